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
	"github.com/pingcap/chunkdeque/pkg/container/chunklist"
)

// Iterator is a bidirectional iterator of Deque. It is invalidated when the
// element it points to is popped, and stays invalid until the chunk of that
// element is reused by a later push. Using it after invalidation is undefined.
type Iterator[T any] struct {
	parent *Deque[T]
	chunk  chunklist.ChunkID
	idx    int
}

// Begin gives the iterator of the first element. It equals End if the deque is
// empty.
func (d *Deque[T]) Begin() *Iterator[T] {
	s := d.engine.BeginSlot()
	return &Iterator[T]{parent: d, chunk: s.Chunk, idx: s.Index}
}

// End gives the special iterator one past the last element.
func (d *Deque[T]) End() *Iterator[T] {
	s := d.engine.EndSlot()
	return &Iterator[T]{parent: d, chunk: s.Chunk, idx: s.Index}
}

// IteratorAt returns the iterator of the element at index i. Negative indexes
// count from the back.
func (d *Deque[T]) IteratorAt(i int) (*Iterator[T], error) {
	s, err := d.engine.Resolve(d.normalize(i))
	if err != nil {
		return nil, err
	}
	return &Iterator[T]{parent: d, chunk: s.Chunk, idx: s.Index}, nil
}

func (it *Iterator[T]) slot() chunklist.Slot {
	return chunklist.Slot{Chunk: it.chunk, Index: it.idx}
}

// Equal reports whether both iterators are at the same position of the same
// deque.
func (it *Iterator[T]) Equal(other *Iterator[T]) bool {
	return it.parent == other.parent && it.chunk == other.chunk && it.idx == other.idx
}

// Valid indicates if the iterator points to an element
func (it *Iterator[T]) Valid() bool {
	return it.parent.engine.Live(it.slot())
}

// Next moves the iterator to the next position and returns it.
func (it *Iterator[T]) Next() *Iterator[T] {
	if it.chunk == chunklist.NilChunk {
		return it
	}
	if it.idx == it.parent.engine.SlotsPerChunk()-1 {
		it.chunk, it.idx = it.parent.engine.Next(it.chunk), 0
	} else {
		it.idx++
	}
	return it
}

// Prev moves the iterator to the previous position and returns it.
func (it *Iterator[T]) Prev() *Iterator[T] {
	e := it.parent.engine
	if it.chunk == chunklist.NilChunk {
		// the end iterator of a deque whose last chunk is full
		if it.idx == 0 && !e.Empty() {
			it.chunk, it.idx = e.Back(), e.SlotIndex(e.Size()-1)
		}
		return it
	}
	if it.idx == 0 {
		it.chunk, it.idx = e.Prev(it.chunk), e.SlotsPerChunk()-1
	} else {
		it.idx--
	}
	return it
}

// Value returns the element of the iterator, the zero value if the iterator
// is not valid.
func (it *Iterator[T]) Value() T {
	if !it.Valid() {
		return it.parent.zero
	}
	return it.parent.blocks[it.chunk][it.idx]
}

// Pointer returns a pointer to the element of the iterator, nil if the
// iterator is not valid.
func (it *Iterator[T]) Pointer() *T {
	if !it.Valid() {
		return nil
	}
	return &it.parent.blocks[it.chunk][it.idx]
}

// Replace assigns a new value to the element of the iterator.
func (it *Iterator[T]) Replace(v T) bool {
	p := it.Pointer()
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Index returns the index of the element of the iterator, -1 for end or
// expired iterator.
func (it *Iterator[T]) Index() int {
	return it.parent.engine.LogicalIndex(it.slot())
}

// Clone returns an independent copy of the iterator.
func (it *Iterator[T]) Clone() *Iterator[T] {
	c := *it
	return &c
}

// ConstIterator is an Iterator that cannot modify the deque.
type ConstIterator[T any] struct {
	it Iterator[T]
}

// Equal reports whether both iterators are at the same position of the same
// deque.
func (c *ConstIterator[T]) Equal(other *ConstIterator[T]) bool {
	return c.it.Equal(&other.it)
}

// Valid indicates if the iterator points to an element
func (c *ConstIterator[T]) Valid() bool {
	return c.it.Valid()
}

// Next moves the iterator to the next position and returns it.
func (c *ConstIterator[T]) Next() *ConstIterator[T] {
	c.it.Next()
	return c
}

// Prev moves the iterator to the previous position and returns it.
func (c *ConstIterator[T]) Prev() *ConstIterator[T] {
	c.it.Prev()
	return c
}

// Value returns a copy of the element of the iterator.
func (c *ConstIterator[T]) Value() T {
	return c.it.Value()
}

// Index returns the index of the element of the iterator, -1 for end or
// expired iterator.
func (c *ConstIterator[T]) Index() int {
	return c.it.Index()
}
