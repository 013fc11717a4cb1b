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

package chunklist

// Stats is a snapshot of the bookkeeping of an Engine.
type Stats struct {
	Size          int     `json:"size"`
	Chunks        int     `json:"chunks"`
	FreeChunks    int     `json:"free-chunks"`
	ArenaLen      int     `json:"arena-len"`
	SlotsPerChunk int     `json:"slots-per-chunk"`
	ElementSize   uintptr `json:"element-size"`
	Offset        int     `json:"offset"`
	// FootprintBytes is the storage reserved by the linked chunks.
	FootprintBytes uint64 `json:"footprint-bytes"`
	// SlackBytes is the part of FootprintBytes holding no element, in front of
	// the first element and after the last one.
	SlackBytes uint64 `json:"slack-bytes"`
}

// Stats returns a snapshot of the engine bookkeeping.
func (e *Engine) Stats() Stats {
	return Stats{
		Size:           e.size,
		Chunks:         e.liveCount,
		FreeChunks:     e.freeCount,
		ArenaLen:       len(e.arena),
		SlotsPerChunk:  e.slotsPerChunk,
		ElementSize:    e.elementSize,
		Offset:         e.offset,
		FootprintBytes: uint64(e.liveCount) * uint64(e.slotsPerChunk) * uint64(e.elementSize),
		SlackBytes:     uint64(e.slackBytes()),
	}
}

func (e *Engine) slackBytes() uintptr {
	slack := e.ByteOffset(e.BeginSlot())
	if end := e.EndSlot(); end.Chunk != NilChunk {
		slack += e.ByteOffset(Slot{Index: e.slotsPerChunk}) - e.ByteOffset(end)
	}
	return slack
}

// Capacity returns how many elements fit in the linked chunks without
// allocating, counting the slots in front of the first element.
func (s Stats) Capacity() int {
	return s.Chunks * s.SlotsPerChunk
}
