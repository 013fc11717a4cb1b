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

import (
	"iter"
	"unsafe"

	"github.com/pingcap/chunkdeque/pkg/container/chunklist"
)

// Deque is a generic double-ended sequence stored as an unrolled
// doubly-linked list of fixed-capacity chunks. Pushing at either end is
// amortized O(1) and never allocates per element; indexed access walks at most
// half of the chunks.
//
// A Deque must be created by New. Attention, it's not thread-safe.
type Deque[T any] struct {
	engine *chunklist.Engine
	// blocks[id] is the storage of chunk id, one allocation per chunk
	blocks [][]T
	zero   T
}

// New creates an empty Deque. The chunk capacity is derived from the size of T,
// see SlotsPerChunk.
func New[T any]() *Deque[T] {
	return newDeque[T](SlotsPerChunk(unsafe.Sizeof(*new(T))))
}

func newDeque[T any](slotsPerChunk int) *Deque[T] {
	return &Deque[T]{
		engine: chunklist.New(unsafe.Sizeof(*new(T)), slotsPerChunk),
	}
}

// Len returns the number of elements
func (d *Deque[T]) Len() int {
	return d.engine.Size()
}

// Empty indicates whether the deque is empty
func (d *Deque[T]) Empty() bool {
	return d.engine.Empty()
}

// SlotsPerChunk returns the capacity of every chunk of the deque
func (d *Deque[T]) SlotsPerChunk() int {
	return d.engine.SlotsPerChunk()
}

// Stats returns a snapshot of the chunk bookkeeping.
func (d *Deque[T]) Stats() chunklist.Stats {
	return d.engine.Stats()
}

// block returns the storage of chunk id, allocating it on first use.
func (d *Deque[T]) block(id chunklist.ChunkID) []T {
	for int(id) >= len(d.blocks) {
		d.blocks = append(d.blocks, nil)
	}
	b := d.blocks[id]
	if b == nil {
		b = make([]T, d.engine.SlotsPerChunk())
		d.blocks[id] = b
	}
	return b
}

func (d *Deque[T]) ptr(s chunklist.Slot) *T {
	return &d.blocks[s.Chunk][s.Index]
}

// PushBack appends v and returns a pointer to the new last element.
func (d *Deque[T]) PushBack(v T) *T {
	s := d.engine.GrowBack()
	p := &d.block(s.Chunk)[s.Index]
	*p = v
	return p
}

// PushFront prepends v and returns a pointer to the new first element.
func (d *Deque[T]) PushFront(v T) *T {
	s := d.engine.GrowFront()
	p := &d.block(s.Chunk)[s.Index]
	*p = v
	return p
}

// EmplaceBack appends an element built in place by init and returns a pointer
// to it. init receives a zeroed slot. If init panics, the deque is left as it
// was before the call.
func (d *Deque[T]) EmplaceBack(init func(p *T)) *T {
	s := d.engine.GrowBack()
	p := &d.block(s.Chunk)[s.Index]
	built := false
	defer func() {
		if !built {
			*p = d.zero
			d.engine.ShrinkBack()
		}
	}()
	init(p)
	built = true
	return p
}

// EmplaceFront prepends an element built in place by init and returns a
// pointer to it. If init panics, the deque is left as it was before the call.
func (d *Deque[T]) EmplaceFront(init func(p *T)) *T {
	s := d.engine.GrowFront()
	p := &d.block(s.Chunk)[s.Index]
	built := false
	defer func() {
		if !built {
			*p = d.zero
			d.engine.ShrinkFront()
		}
	}()
	init(p)
	built = true
	return p
}

// PopBack removes the last element and returns it, false if the deque is empty.
func (d *Deque[T]) PopBack() (T, bool) {
	s, ok := d.engine.ShrinkBack()
	if !ok {
		return d.zero, false
	}
	return d.vacate(s), true
}

// PopFront removes the first element and returns it, false if the deque is
// empty.
func (d *Deque[T]) PopFront() (T, bool) {
	s, ok := d.engine.ShrinkFront()
	if !ok {
		return d.zero, false
	}
	return d.vacate(s), true
}

// vacate clears a slot released by the engine so that the element can be
// garbage collected.
func (d *Deque[T]) vacate(s chunklist.Slot) T {
	p := d.ptr(s)
	v := *p
	*p = d.zero
	return v
}

// Front returns the first element, false if the deque is empty.
func (d *Deque[T]) Front() (T, bool) {
	if d.Empty() {
		return d.zero, false
	}
	return *d.ptr(d.engine.BeginSlot()), true
}

// Back returns the last element, false if the deque is empty.
func (d *Deque[T]) Back() (T, bool) {
	if d.Empty() {
		return d.zero, false
	}
	return *d.ptr(d.lastSlot()), true
}

func (d *Deque[T]) lastSlot() chunklist.Slot {
	return chunklist.Slot{
		Chunk: d.engine.Back(),
		Index: d.engine.SlotIndex(d.engine.Size() - 1),
	}
}

// normalize maps a negative index to its position counted from the back.
func (d *Deque[T]) normalize(i int) int {
	if i < 0 {
		return d.engine.Size() + i
	}
	return i
}

// At returns a pointer to the element at index i. A negative i counts from the
// back, -1 being the last element. ErrIndexOutOfRange is returned if i is not
// in [-Len(), Len()).
func (d *Deque[T]) At(i int) (*T, error) {
	s, err := d.engine.Resolve(d.normalize(i))
	if err != nil {
		return nil, err
	}
	return d.ptr(s), nil
}

// Index is like At, but panics with ErrIndexOutOfRange instead of returning
// it, the same way indexing a slice does.
func (d *Deque[T]) Index(i int) *T {
	p, err := d.At(i)
	if err != nil {
		panic(err)
	}
	return p
}

// Get returns a copy of the element at index i.
func (d *Deque[T]) Get(i int) (T, error) {
	p, err := d.At(i)
	if err != nil {
		return d.zero, err
	}
	return *p, nil
}

// Set replaces the element at index i.
func (d *Deque[T]) Set(i int, v T) error {
	p, err := d.At(i)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Clear removes every element and releases every chunk.
func (d *Deque[T]) Clear() {
	d.engine.Clear()
	d.blocks = nil
}

// Shrink releases the storage of chunks that were emptied by pops and kept for
// reuse.
func (d *Deque[T]) Shrink() {
	d.engine.WalkFree(func(id chunklist.ChunkID) {
		if int(id) < len(d.blocks) {
			d.blocks[id] = nil
		}
	})
}

// Clone returns a copy of the deque with a fresh chunk layout. Elements are
// copied by assignment.
func (d *Deque[T]) Clone() *Deque[T] {
	return d.CloneFunc(nil)
}

// CloneFunc is like Clone, but copies every element with copyFn.
func (d *Deque[T]) CloneFunc(copyFn func(v T) T) *Deque[T] {
	c := newDeque[T](d.engine.SlotsPerChunk())
	d.Range(func(v T) bool {
		if copyFn != nil {
			v = copyFn(v)
		}
		c.PushBack(v)
		return true
	})
	return c
}

// Move transfers all elements to a new Deque without copying them. The
// receiver is left empty and holds no chunk.
func (d *Deque[T]) Move() *Deque[T] {
	moved := &Deque[T]{
		engine: d.engine.Move(),
		blocks: d.blocks,
	}
	d.blocks = nil
	return moved
}

// Range iterates the deque from front to back until f returns false.
// The deque must not be modified during the iteration.
func (d *Deque[T]) Range(f func(v T) bool) {
	d.RangeWithIndex(func(_ int, v T) bool {
		return f(v)
	})
}

// RangeWithIndex iterates the deque with index from front to back until f
// returns false. The deque must not be modified during the iteration.
func (d *Deque[T]) RangeWithIndex(f func(idx int, v T) bool) {
	size := d.engine.Size()
	slots := d.engine.SlotsPerChunk()
	idx := 0
	j := d.engine.Offset()
	for id := d.engine.Front(); id != chunklist.NilChunk && idx < size; id = d.engine.Next(id) {
		b := d.blocks[id]
		for ; j < slots && idx < size; j++ {
			if !f(idx, b[j]) {
				return
			}
			idx++
		}
		j = 0
	}
}

// All returns an iterator over index-value pairs from front to back.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		d.RangeWithIndex(yield)
	}
}

// Backward returns an iterator over index-value pairs from back to front.
func (d *Deque[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		size := d.engine.Size()
		if size == 0 {
			return
		}
		idx := size - 1
		j := d.engine.SlotIndex(idx)
		for id := d.engine.Back(); id != chunklist.NilChunk && idx >= 0; id = d.engine.Prev(id) {
			b := d.blocks[id]
			for ; j >= 0 && idx >= 0; j-- {
				if !yield(idx, b[j]) {
					return
				}
				idx--
			}
			j = d.engine.SlotsPerChunk() - 1
		}
	}
}

// Values returns an iterator over the elements from front to back.
func (d *Deque[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		d.Range(yield)
	}
}
