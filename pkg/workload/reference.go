// Copyright 2024 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package workload

import (
	edeque "github.com/edwingeng/deque"
)

// The reference deque holds int64 keys. It only supports operations at both
// ends, so indexed access rotates the front elements out and back in.

func refValues(ref edeque.Deque) []int64 {
	if ref.Empty() {
		return nil
	}
	vals := ref.PopManyFront(ref.Len())
	res := make([]int64, 0, len(vals))
	for _, v := range vals {
		ref.PushBack(v)
		res = append(res, v.(int64))
	}
	return res
}

func refAt(ref edeque.Deque, i int) int64 {
	vals := ref.PopManyFront(i + 1)
	for j := len(vals) - 1; j >= 0; j-- {
		ref.PushFront(vals[j])
	}
	return vals[i].(int64)
}

func refSet(ref edeque.Deque, i int, key int64) {
	vals := ref.PopManyFront(i + 1)
	vals[i] = key
	for j := len(vals) - 1; j >= 0; j-- {
		ref.PushFront(vals[j])
	}
}
