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

package deque

// A chunk aims at TargetChunkBytes of storage, but never holds fewer than
// MinSlotsPerChunk or more than MaxSlotsPerChunk elements.
const (
	TargetChunkBytes = 2048
	MaxSlotsPerChunk = 128
	MinSlotsPerChunk = 4
)

// SlotsPerChunk returns how many elements of elementSize bytes are stored in
// one chunk.
func SlotsPerChunk(elementSize uintptr) int {
	if elementSize == 0 {
		return MaxSlotsPerChunk
	}
	n := TargetChunkBytes / elementSize
	if n > MaxSlotsPerChunk {
		return MaxSlotsPerChunk
	}
	if n < MinSlotsPerChunk {
		return MinSlotsPerChunk
	}
	return int(n)
}
