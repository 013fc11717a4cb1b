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
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
)

// ChunkQueue is a generic, iterable and GC-friendly FIFO queue stored in
// fixed-size chunks. Dequeued slots are cleared at once, and a chunk emptied
// from the head is recycled for the tail.
// Attention, it's not thread-safe.
type ChunkQueue[T any] struct {
	d            *deque.Deque[T]
	defaultValue T
}

// NewChunkQueue creates a new ChunkQueue
func NewChunkQueue[T any]() *ChunkQueue[T] {
	return &ChunkQueue[T]{d: deque.New[T]()}
}

// Len returns the number of elements in queue
func (q *ChunkQueue[T]) Len() int {
	return q.d.Len()
}

// Cap returns the number of elements the queue can hold before it needs a new
// chunk. The queue can hold more elements than that number by automatic
// expansion
func (q *ChunkQueue[T]) Cap() int {
	st := q.d.Stats()
	return st.Capacity() - st.Offset
}

// Empty indicates whether the queue is empty
func (q *ChunkQueue[T]) Empty() bool {
	return q.d.Empty()
}

// At returns the value of a given index. At() does NOT support modifying the value
func (q *ChunkQueue[T]) At(idx int) (T, bool) {
	if idx < 0 || idx >= q.d.Len() {
		return q.defaultValue, false
	}
	return *q.d.Index(idx), true
}

// Replace assigns a new value to a given index
func (q *ChunkQueue[T]) Replace(idx int, val T) bool {
	if idx < 0 || idx >= q.d.Len() {
		return false
	}
	*q.d.Index(idx) = val
	return true
}

// Head returns the value of the first element in queue
func (q *ChunkQueue[T]) Head() (T, bool) {
	return q.d.Front()
}

// Tail returns the value of the last element in queue
func (q *ChunkQueue[T]) Tail() (T, bool) {
	return q.d.Back()
}

// Peek returns the first element, or ErrEmptyContainer if there is none.
func (q *ChunkQueue[T]) Peek() (T, error) {
	v, ok := q.d.Front()
	if !ok {
		return q.defaultValue, cerror.ErrEmptyContainer.GenWithStackByArgs()
	}
	return v, nil
}

// Enqueue enqueues an element to tail
func (q *ChunkQueue[T]) Enqueue(v T) {
	q.d.PushBack(v)
}

// EnqueueMany enqueues multiple elements at a time
func (q *ChunkQueue[T]) EnqueueMany(vals ...T) {
	for _, val := range vals {
		q.d.PushBack(val)
	}
}

// Dequeue dequeues an element from head
func (q *ChunkQueue[T]) Dequeue() (T, bool) {
	return q.d.PopFront()
}

// DequeueAll dequeues all elements in the queue
func (q *ChunkQueue[T]) DequeueAll() ([]T, bool) {
	return q.DequeueMany(q.Len())
}

// DequeueMany dequeues n elements at a time. If the queue holds fewer than n
// elements, all of them are dequeued and ok is false.
func (q *ChunkQueue[T]) DequeueMany(n int) ([]T, bool) {
	if n < 0 {
		return nil, false
	}

	ok := n <= q.d.Len()
	if q.d.Len() < n {
		n = q.d.Len()
	}

	res := make([]T, n)
	for i := range res {
		res[i], _ = q.d.PopFront()
	}
	return res, ok
}

// DequeueExact dequeues exactly n elements. Nothing is dequeued if n is
// negative or larger than the length of the queue.
func (q *ChunkQueue[T]) DequeueExact(n int) ([]T, error) {
	if n < 0 {
		return nil, cerror.ErrNegativeCount.GenWithStackByArgs(n)
	}
	if n > q.d.Len() {
		return nil, cerror.ErrNotEnoughElements.GenWithStackByArgs(n, q.d.Len())
	}
	res, _ := q.DequeueMany(n)
	return res, nil
}

// Clear clears the queue to empty and drops all chunks
func (q *ChunkQueue[T]) Clear() {
	q.d.Clear()
}

// Shrink drops the recycled chunks kept for later use
func (q *ChunkQueue[T]) Shrink() {
	q.d.Shrink()
}

// Range iterates the queue from head to the first element that does NOT satisfy f()
func (q *ChunkQueue[T]) Range(f func(e T) bool) {
	q.d.Range(f)
}

// RangeWithIndex iterates the queue with index from head to the first element
// that does NOT satisfy f. The queue must not be modified inside f.
func (q *ChunkQueue[T]) RangeWithIndex(f func(idx int, e T) bool) {
	q.d.RangeWithIndex(f)
}

// RangeAndPop iterates the queue from head, and pops the element till the first
// element that does NOT satisfy f()
func (q *ChunkQueue[T]) RangeAndPop(f func(e T) bool) {
	for {
		v, ok := q.d.Front()
		if !ok || !f(v) {
			return
		}
		q.d.PopFront()
	}
}
