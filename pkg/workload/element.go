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

// wideElement is large enough to get the minimum number of slots per chunk.
type wideElement [64]int64

// codec builds elements from int64 keys and reads the keys back, so the same
// reference deque of keys can check any element type.
type codec[T any] struct {
	fill func(p *T, key int64)
	key  func(v T) int64
}

var intCodec = codec[int64]{
	fill: func(p *int64, key int64) { *p = key },
	key:  func(v int64) int64 { return v },
}

var wideCodec = codec[wideElement]{
	fill: func(p *wideElement, key int64) {
		for i := range p {
			p[i] = key + int64(i)
		}
	},
	key: func(v wideElement) int64 {
		// a torn element yields a key that never matches the reference
		if v[len(v)-1] != v[0]+int64(len(v)-1) {
			return -1
		}
		return v[0]
	},
}
