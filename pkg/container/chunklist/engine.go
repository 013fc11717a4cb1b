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

import (
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// ChunkID identifies a chunk in the arena of an Engine. IDs are stable for as
// long as the chunk stays linked; a released ID may be handed out again.
type ChunkID int

// NilChunk is the absent chunk. It is the prev link of the front chunk and the
// next link of the back chunk.
const NilChunk ChunkID = -1

// Slot locates one element slot: a chunk and an index inside that chunk.
type Slot struct {
	Chunk ChunkID
	Index int
}

// link is the header of a chunk. The storage of the chunk is owned by the
// typed layer and is addressed by the same ChunkID.
type link struct {
	prev  ChunkID
	next  ChunkID
	inUse bool
}

// Engine is the type-erased storage engine of an unrolled doubly-linked list.
// It maps logical indexes to (chunk, slot) pairs and grows or shrinks at both
// ends, but never touches elements itself.
// Attention, it's not thread-safe.
type Engine struct {
	elementSize   uintptr
	slotsPerChunk int

	// arena holds every chunk header. Released chunks are threaded through
	// their next link, starting at free.
	arena     []link
	free      ChunkID
	freeCount int
	liveCount int

	front ChunkID
	back  ChunkID

	// size is the number of elements
	size int
	// offset is the slot index of logical element 0 in the front chunk
	offset int
}

// New creates an empty Engine whose chunks hold slotsPerChunk slots of
// elementSize bytes each.
func New(elementSize uintptr, slotsPerChunk int) *Engine {
	if slotsPerChunk < 1 {
		log.Panic("slots per chunk must be positive",
			zap.Int("slotsPerChunk", slotsPerChunk),
			zap.Uintptr("elementSize", elementSize))
	}
	return &Engine{
		elementSize:   elementSize,
		slotsPerChunk: slotsPerChunk,
		free:          NilChunk,
		front:         NilChunk,
		back:          NilChunk,
	}
}

// Size returns the number of elements
func (e *Engine) Size() int {
	return e.size
}

// Empty indicates whether the engine holds no element
func (e *Engine) Empty() bool {
	return e.size == 0
}

// SlotsPerChunk returns the capacity of every chunk
func (e *Engine) SlotsPerChunk() int {
	return e.slotsPerChunk
}

// ElementSize returns the byte size of one slot
func (e *Engine) ElementSize() uintptr {
	return e.elementSize
}

// Offset returns the slot index of the first element in the front chunk
func (e *Engine) Offset() int {
	return e.offset
}

// ChunkCount returns the number of chunks linked in the list.
func (e *Engine) ChunkCount() int {
	return e.liveCount
}

// ArenaLen returns the number of chunk IDs ever handed out. Every ChunkID the
// engine returns is below ArenaLen.
func (e *Engine) ArenaLen() int {
	return len(e.arena)
}

// Front returns the first chunk, or NilChunk if there is none.
func (e *Engine) Front() ChunkID {
	return e.front
}

// Back returns the last chunk, or NilChunk if there is none.
func (e *Engine) Back() ChunkID {
	return e.back
}

// Next returns the chunk after id.
func (e *Engine) Next(id ChunkID) ChunkID {
	return e.arena[id].next
}

// Prev returns the chunk before id.
func (e *Engine) Prev(id ChunkID) ChunkID {
	return e.arena[id].prev
}

// Walk calls f on every linked chunk from front to back until f returns false.
func (e *Engine) Walk(f func(id ChunkID) bool) {
	for id := e.front; id != NilChunk; id = e.arena[id].next {
		if !f(id) {
			return
		}
	}
}

// WalkFree calls f on every released chunk waiting for reuse.
func (e *Engine) WalkFree(f func(id ChunkID)) {
	for id := e.free; id != NilChunk; id = e.arena[id].next {
		f(id)
	}
}

// SlotIndex returns the index inside its chunk of logical element i.
func (e *Engine) SlotIndex(i int) int {
	return (i + e.offset) % e.slotsPerChunk
}

// ChunkNumber returns the position, counted from the front chunk, of the chunk
// holding logical element i.
func (e *Engine) ChunkNumber(i int) int {
	return (i + e.offset) / e.slotsPerChunk
}

// ByteOffset returns the byte address of s relative to the storage base of its
// chunk. Typed storage addresses slots by index; the byte form feeds Stats.
func (e *Engine) ByteOffset(s Slot) uintptr {
	return uintptr(s.Index) * e.elementSize
}

// Resolve bound-checks i and returns the slot holding logical element i.
func (e *Engine) Resolve(i int) (Slot, error) {
	if i < 0 || i >= e.size {
		return Slot{Chunk: NilChunk}, cerror.ErrIndexOutOfRange.GenWithStackByArgs(i, e.size)
	}
	return Slot{Chunk: e.chunkOf(i), Index: e.SlotIndex(i)}, nil
}

// route decides from which end the chunk of element i is reached, and how many
// hops it takes. The walk never crosses more than half of the chunks.
func (e *Engine) route(i int) (fromFront bool, hops int) {
	last := e.ChunkNumber(e.size - 1)
	n := e.ChunkNumber(i)
	if n <= last/2 {
		return true, n
	}
	return false, last - n
}

func (e *Engine) chunkOf(i int) ChunkID {
	fromFront, hops := e.route(i)
	if fromFront {
		id := e.front
		for ; hops > 0; hops-- {
			id = e.arena[id].next
		}
		return id
	}
	id := e.back
	for ; hops > 0; hops-- {
		id = e.arena[id].prev
	}
	return id
}

// GrowBack makes room for one element after the last one and returns its slot.
func (e *Engine) GrowBack() Slot {
	if e.back == NilChunk {
		e.addInitialChunk()
	}
	if e.size == 0 {
		e.offset = 0
		e.size++
		return Slot{Chunk: e.back, Index: 0}
	}

	last := e.SlotIndex(e.size - 1)
	e.size++
	if last == e.slotsPerChunk-1 {
		// the back chunk is full
		e.back = e.newChunk(e.back, NilChunk)
		return Slot{Chunk: e.back, Index: 0}
	}
	return Slot{Chunk: e.back, Index: last + 1}
}

// GrowFront makes room for one element before the first one and returns its
// slot.
func (e *Engine) GrowFront() Slot {
	if e.front == NilChunk {
		e.addInitialChunk()
	}
	if e.size == 0 {
		e.offset = e.slotsPerChunk - 1
		e.size++
		return Slot{Chunk: e.front, Index: e.offset}
	}

	e.size++
	if e.offset == 0 {
		// no free slot before the first element
		e.front = e.newChunk(NilChunk, e.front)
		e.offset = e.slotsPerChunk - 1
		return Slot{Chunk: e.front, Index: e.offset}
	}
	e.offset--
	return Slot{Chunk: e.front, Index: e.offset}
}

// ShrinkBack vacates the slot of the last element and returns it. A back chunk
// left without elements is released, except the only chunk of an engine that
// becomes empty.
func (e *Engine) ShrinkBack() (Slot, bool) {
	if e.size == 0 {
		return Slot{Chunk: NilChunk}, false
	}

	s := Slot{Chunk: e.back, Index: e.SlotIndex(e.size - 1)}
	e.size--
	if e.size == 0 {
		e.offset = 0
		return s, true
	}
	if s.Index == 0 {
		prev := e.arena[e.back].prev
		e.releaseChunk(e.back)
		e.back = prev
	}
	return s, true
}

// ShrinkFront vacates the slot of the first element and returns it. A front
// chunk left without elements is released, except the only chunk of an engine
// that becomes empty.
func (e *Engine) ShrinkFront() (Slot, bool) {
	if e.size == 0 {
		return Slot{Chunk: NilChunk}, false
	}

	s := Slot{Chunk: e.front, Index: e.offset}
	e.size--
	if e.size == 0 {
		e.offset = 0
		return s, true
	}
	e.offset++
	if e.offset == e.slotsPerChunk {
		next := e.arena[e.front].next
		e.releaseChunk(e.front)
		e.front = next
		e.offset = 0
	}
	return s, true
}

// BeginSlot returns the position of the first element.
func (e *Engine) BeginSlot() Slot {
	return Slot{Chunk: e.front, Index: e.offset}
}

// EndSlot returns the position one past the last element. When the last
// element fills its chunk the position would lie in a chunk that does not
// exist, so it is represented as (NilChunk, 0).
func (e *Engine) EndSlot() Slot {
	idx := e.SlotIndex(e.size)
	if e.size > 0 && idx == 0 {
		return Slot{Chunk: NilChunk, Index: 0}
	}
	return Slot{Chunk: e.back, Index: idx}
}

// Live reports whether s holds an element.
func (e *Engine) Live(s Slot) bool {
	if e.size == 0 || s.Chunk < 0 || int(s.Chunk) >= len(e.arena) ||
		s.Index < 0 || s.Index >= e.slotsPerChunk || !e.arena[s.Chunk].inUse {
		return false
	}
	if s.Chunk == e.front && s.Index < e.offset {
		return false
	}
	if s.Chunk == e.back && s.Index > e.SlotIndex(e.size-1) {
		return false
	}
	return true
}

// LogicalIndex returns the logical index of the element in s, -1 if s holds no
// element.
func (e *Engine) LogicalIndex(s Slot) int {
	if !e.Live(s) {
		return -1
	}
	n := 0
	for id := e.front; id != s.Chunk; id = e.arena[id].next {
		n++
	}
	return n*e.slotsPerChunk + s.Index - e.offset
}

// Clear drops every chunk, including the released ones.
func (e *Engine) Clear() {
	e.arena = nil
	e.free = NilChunk
	e.freeCount = 0
	e.liveCount = 0
	e.front, e.back = NilChunk, NilChunk
	e.size = 0
	e.offset = 0
}

// Move transfers the chunk list, size and offset to a new Engine. The
// receiver is left empty, without any chunk.
func (e *Engine) Move() *Engine {
	moved := *e
	e.Clear()
	return &moved
}

func (e *Engine) addInitialChunk() {
	e.front = e.newChunk(NilChunk, NilChunk)
	e.back = e.front
}

// newChunk links a chunk between prev and next, reusing a released one if
// possible.
func (e *Engine) newChunk(prev, next ChunkID) ChunkID {
	var id ChunkID
	if e.free != NilChunk {
		id = e.free
		e.free = e.arena[id].next
		e.freeCount--
	} else {
		id = ChunkID(len(e.arena))
		e.arena = append(e.arena, link{})
	}

	e.arena[id] = link{prev: prev, next: next, inUse: true}
	if prev != NilChunk {
		e.arena[prev].next = id
	}
	if next != NilChunk {
		e.arena[next].prev = id
	}
	e.liveCount++
	return id
}

func (e *Engine) releaseChunk(id ChunkID) {
	l := e.arena[id]
	if l.prev != NilChunk {
		e.arena[l.prev].next = l.next
	}
	if l.next != NilChunk {
		e.arena[l.next].prev = l.prev
	}
	e.arena[id] = link{prev: NilChunk, next: e.free}
	e.free = id
	e.freeCount++
	e.liveCount--
}
