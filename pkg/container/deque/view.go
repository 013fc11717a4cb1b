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
)

// View is a read-only view of a Deque. It reflects later changes of the deque.
type View[T any] struct {
	d *Deque[T]
}

// View returns a read-only view of the deque.
func (d *Deque[T]) View() View[T] {
	return View[T]{d: d}
}

// Len returns the number of elements
func (v View[T]) Len() int {
	return v.d.Len()
}

// Empty indicates whether the deque is empty
func (v View[T]) Empty() bool {
	return v.d.Empty()
}

// At returns a copy of the element at index i, see Deque.At.
func (v View[T]) At(i int) (T, error) {
	return v.d.Get(i)
}

// Index returns a copy of the element at index i, see Deque.Index.
func (v View[T]) Index(i int) T {
	return *v.d.Index(i)
}

// Front returns the first element, false if the deque is empty.
func (v View[T]) Front() (T, bool) {
	return v.d.Front()
}

// Back returns the last element, false if the deque is empty.
func (v View[T]) Back() (T, bool) {
	return v.d.Back()
}

// Begin gives the iterator of the first element.
func (v View[T]) Begin() *ConstIterator[T] {
	return &ConstIterator[T]{it: *v.d.Begin()}
}

// End gives the special iterator one past the last element.
func (v View[T]) End() *ConstIterator[T] {
	return &ConstIterator[T]{it: *v.d.End()}
}

// All returns an iterator over index-value pairs from front to back.
func (v View[T]) All() iter.Seq2[int, T] {
	return v.d.All()
}

// Backward returns an iterator over index-value pairs from back to front.
func (v View[T]) Backward() iter.Seq2[int, T] {
	return v.d.Backward()
}
