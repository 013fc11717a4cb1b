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

package queue

import (
	"github.com/pingcap/chunkdeque/pkg/container/deque"
)

// ChunkQueueIterator is the iterator of ChunkQueue
type ChunkQueueIterator[T any] struct {
	it *deque.Iterator[T]
}

// Begin() gives the first iterator of the queue
func (q *ChunkQueue[T]) Begin() *ChunkQueueIterator[T] {
	return &ChunkQueueIterator[T]{it: q.d.Begin()}
}

// End() creates an special iterator of the queue representing the end
func (q *ChunkQueue[T]) End() *ChunkQueueIterator[T] {
	return &ChunkQueueIterator[T]{it: q.d.End()}
}

// GetIterator() returns a iterator given the index, and nil if out of range
func (q *ChunkQueue[T]) GetIterator(idx int) *ChunkQueueIterator[T] {
	if idx < 0 {
		return nil
	}
	it, err := q.d.IteratorAt(idx)
	if err != nil {
		return nil
	}
	return &ChunkQueueIterator[T]{it: it}
}

// Valid() indicates if iterator points to a valid element. Iterators of
// dequeued elements are not valid.
func (it *ChunkQueueIterator[T]) Valid() bool {
	return it.it.Valid()
}

// Value returns the element value of the iterator
func (it *ChunkQueueIterator[T]) Value() T {
	return it.it.Value()
}

// Replace assigns a new value to the element of the iterator
func (it *ChunkQueueIterator[T]) Replace(v T) bool {
	return it.it.Replace(v)
}

// Index() returns the index of a given iterator, -1 for end or expired iterator
func (it *ChunkQueueIterator[T]) Index() int {
	return it.it.Index()
}

// Equal reports whether both iterators point to the same position
func (it *ChunkQueueIterator[T]) Equal(other *ChunkQueueIterator[T]) bool {
	return it.it.Equal(other.it)
}

// Next() updates the current iterator to its next iterator and returns it
func (it *ChunkQueueIterator[T]) Next() *ChunkQueueIterator[T] {
	if it.Valid() {
		it.it.Next()
	}
	return it
}

// Prev updates the current to its previous one and returns it. An end
// iterator of a non-empty queue moves to the last element.
func (it *ChunkQueueIterator[T]) Prev() *ChunkQueueIterator[T] {
	it.it.Prev()
	return it
}
