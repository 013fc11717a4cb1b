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
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"unsafe"

	edeque "github.com/edwingeng/deque"
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/stretchr/testify/require"
)

// wide is large enough to get MinSlotsPerChunk slots per chunk.
type wide [64]int64

// refValues returns the content of the reference deque, leaving it unchanged.
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

func values[T any](d *Deque[T]) []T {
	res := make([]T, 0, d.Len())
	for it := d.Begin(); !it.Equal(d.End()); it.Next() {
		res = append(res, it.Value())
	}
	return res
}

func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return nil
}

func TestSlotsPerChunk(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		elementSize uintptr
		expected    int
	}{
		{0, MaxSlotsPerChunk},
		{1, MaxSlotsPerChunk},
		{8, MaxSlotsPerChunk},
		{16, MaxSlotsPerChunk},
		{17, 120},
		{32, 64},
		{256, 8},
		{512, MinSlotsPerChunk},
		{1024, MinSlotsPerChunk},
		{1 << 20, MinSlotsPerChunk},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, SlotsPerChunk(tc.elementSize), tc.elementSize)
	}

	require.Equal(t, 128, New[int64]().SlotsPerChunk())
	require.Equal(t, 4, New[wide]().SlotsPerChunk())
	require.Equal(t, 128, New[struct{}]().SlotsPerChunk())
	require.Equal(t, SlotsPerChunk(unsafe.Sizeof([]int64{})), New[[]int64]().SlotsPerChunk())
}

func TestDequeCommon(t *testing.T) {
	t.Parallel()

	d := New[int]()
	d.PushBack(1)
	d.PushBack(2)
	d.PushBack(3)
	d.PushFront(0)

	require.Equal(t, 4, d.Len())
	require.False(t, d.Empty())
	v, err := d.Get(0)
	require.NoError(t, err)
	require.Equal(t, 0, v)
	v, err = d.Get(-1)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, []int{0, 1, 2, 3}, values(d))

	front, ok := d.Front()
	require.True(t, ok)
	require.Equal(t, 0, front)
	back, ok := d.Back()
	require.True(t, ok)
	require.Equal(t, 3, back)

	require.NoError(t, d.Set(-2, 20))
	require.Equal(t, 20, *d.Index(2))
	*d.Index(1) = 10
	require.Equal(t, []int{0, 10, 20, 3}, values(d))
}

func TestChunkBoundaryCrossing(t *testing.T) {
	t.Parallel()

	d := New[wide]()
	require.Equal(t, 4, d.SlotsPerChunk())
	for i := 0; i < 9; i++ {
		d.PushBack(wide{int64(i)})
	}
	require.Equal(t, 9, d.Len())
	require.Equal(t, 3, d.Stats().Chunks)

	for i := 0; i < 9; i++ {
		p, err := d.At(i)
		require.NoError(t, err)
		require.Equal(t, int64(i), (*p)[0])

		p, err = d.At(i - 9)
		require.NoError(t, err)
		require.Equal(t, int64(i), (*p)[0])
	}

	// the same content laid out from the front
	d = New[wide]()
	for i := 8; i >= 0; i-- {
		d.PushFront(wide{int64(i)})
	}
	require.Equal(t, 3, d.Stats().Chunks)
	require.Equal(t, 3, d.Stats().Offset)
	for i := 0; i < 9; i++ {
		require.Equal(t, int64(i), (*d.Index(i))[0])
	}
}

func TestOutOfRange(t *testing.T) {
	t.Parallel()

	d := New[int]()
	_, err := d.At(0)
	require.True(t, cerror.IsIndexOutOfRange(err))
	_, err = d.At(-1)
	require.True(t, cerror.IsIndexOutOfRange(err))
	require.True(t, d.Begin().Equal(d.End()))

	for i := 0; i < 4; i++ {
		d.PushBack(i)
	}
	for _, i := range []int{4, 5, -5, -6, 1 << 30, -(1 << 30)} {
		p, err := d.At(i)
		require.Nil(t, p)
		require.True(t, cerror.IsIndexOutOfRange(err), i)

		_, err = d.Get(i)
		require.True(t, cerror.IsIndexOutOfRange(err), i)
		require.True(t, cerror.IsIndexOutOfRange(d.Set(i, 0)), i)

		err = recoverError(func() { d.Index(i) })
		require.True(t, cerror.IsIndexOutOfRange(err), i)
		err = recoverError(func() { d.View().Index(i) })
		require.True(t, cerror.IsIndexOutOfRange(err), i)

		_, err = d.IteratorAt(i)
		require.True(t, cerror.IsIndexOutOfRange(err), i)
	}
	require.Equal(t, []int{0, 1, 2, 3}, values(d))
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	d := New[string]()
	require.True(t, d.Empty())
	require.True(t, d.Begin().Equal(d.End()))
	require.True(t, d.View().Begin().Equal(d.View().End()))
	_, ok := d.Front()
	require.False(t, ok)
	_, ok = d.Back()
	require.False(t, ok)
	_, ok = d.PopBack()
	require.False(t, ok)
	_, ok = d.PopFront()
	require.False(t, ok)

	// emptied by pops, one chunk is kept
	d.PushFront("a")
	d.PushBack("b")
	_, ok = d.PopFront()
	require.True(t, ok)
	_, ok = d.PopFront()
	require.True(t, ok)
	require.True(t, d.Empty())
	require.Equal(t, 1, d.Stats().Chunks)
	require.True(t, d.Begin().Equal(d.End()))
}

func TestPointerStability(t *testing.T) {
	t.Parallel()

	d := New[int]()
	p := d.PushBack(42)
	for i := 0; i < 1000; i++ {
		d.PushBack(i)
		d.PushFront(-i)
	}
	require.Equal(t, 42, *p)
	*p = 43
	v, err := d.Get(1000)
	require.NoError(t, err)
	require.Equal(t, 43, v)
}

func TestEmplace(t *testing.T) {
	t.Parallel()

	d := New[[]int64]()
	for i := 0; i < 300; i++ {
		obj := d.EmplaceBack(func(p *[]int64) {
			require.Nil(t, *p)
			*p = append(*p, int64(i))
		})
		*obj = append(*obj, int64(i)*2)

		obj = d.EmplaceFront(func(p *[]int64) {
			require.Nil(t, *p)
			*p = append(*p, -int64(i))
		})
		*obj = append(*obj, -int64(i)*2)
	}
	require.Equal(t, 600, d.Len())
	for i := 0; i < 300; i++ {
		require.Equal(t, []int64{int64(i), int64(i) * 2}, *d.Index(300 + i))
		require.Equal(t, []int64{-int64(i), -int64(i) * 2}, *d.Index(299 - i))
	}
}

func TestEmplaceRollback(t *testing.T) {
	t.Parallel()

	build := func(n, front int) *Deque[[]int64] {
		d := newDeque[[]int64](4)
		for i := 0; i < n; i++ {
			d.PushBack([]int64{int64(i)})
		}
		for i := 0; i < front; i++ {
			d.PushFront([]int64{int64(-i - 1)})
		}
		return d
	}
	boom := func(p *[]int64) {
		*p = []int64{-100}
		panic("boom")
	}

	// empty, partial chunks, full back chunk and zero offset
	layouts := [][2]int{{0, 0}, {3, 0}, {4, 0}, {8, 0}, {4, 3}, {4, 4}, {5, 2}}
	for _, layout := range layouts {
		for _, atBack := range []bool{true, false} {
			d := build(layout[0], layout[1])
			before := values(d)
			stats := d.Stats()

			require.PanicsWithValue(t, "boom", func() {
				if atBack {
					d.EmplaceBack(boom)
				} else {
					d.EmplaceFront(boom)
				}
			})
			require.Equal(t, before, values(d), layout)
			require.Equal(t, stats.Size, d.Stats().Size)
			if stats.Size > 0 {
				require.Equal(t, stats.Chunks, d.Stats().Chunks)
				require.Equal(t, stats.Offset, d.Stats().Offset)
			}

			// the slot was cleared and can be used again
			p := d.EmplaceBack(func(p *[]int64) {
				require.Nil(t, *p)
				*p = []int64{7}
			})
			require.Equal(t, []int64{7}, *p)
			p = d.EmplaceFront(func(p *[]int64) {
				require.Nil(t, *p)
				*p = []int64{8}
			})
			require.Equal(t, []int64{8}, *p)
			require.Equal(t, len(before)+2, d.Len())
		}
	}
}

type dequeMaker struct {
	name string
	fn   func(d *Deque[[]int64], ref edeque.Deque, data []int64)
}

var makers = []dequeMaker{
	{"emplace_back", func(d *Deque[[]int64], ref edeque.Deque, data []int64) {
		for _, val := range data {
			obj := d.EmplaceBack(func(*[]int64) {})
			*obj = append(*obj, val)
			ref.PushBack(val)
		}
	}},
	{"emplace_front", func(d *Deque[[]int64], ref edeque.Deque, data []int64) {
		for _, val := range data {
			obj := d.EmplaceFront(func(*[]int64) {})
			*obj = append(*obj, val)
			ref.PushFront(val)
		}
	}},
	{"emplace_mixed", func(d *Deque[[]int64], ref edeque.Deque, data []int64) {
		for _, val := range data {
			if val%2 == 0 {
				d.EmplaceFront(func(p *[]int64) { *p = append(*p, val) })
				ref.PushFront(val)
			} else {
				d.EmplaceBack(func(p *[]int64) { *p = append(*p, val) })
				ref.PushBack(val)
			}
		}
	}},
	{"push_mixed", func(d *Deque[[]int64], ref edeque.Deque, data []int64) {
		for _, val := range data {
			if val%3 == 0 {
				d.PushBack([]int64{val})
				ref.PushBack(val)
			} else {
				d.PushFront([]int64{val})
				ref.PushFront(val)
			}
		}
	}},
}

type dequeChecker struct {
	name string
	fn   func(t *testing.T, d *Deque[[]int64], want []int64)
}

var checkers = []dequeChecker{
	{"random access", func(t *testing.T, d *Deque[[]int64], want []int64) {
		require.Equal(t, len(want), d.Len())
		for i := range want {
			p, err := d.At(i)
			require.NoError(t, err)
			require.Equal(t, want[i], (*p)[0])
			require.Equal(t, want[i], (*d.Index(i))[0])
			require.Equal(t, want[i], (*d.Index(i - len(want)))[0])
		}
	}},
	{"const random access", func(t *testing.T, d *Deque[[]int64], want []int64) {
		v := d.View()
		require.Equal(t, len(want), v.Len())
		for i := range want {
			obj, err := v.At(i)
			require.NoError(t, err)
			require.Equal(t, want[i], obj[0])
			require.Equal(t, want[i], v.Index(i)[0])
		}
	}},
	{"iterator", func(t *testing.T, d *Deque[[]int64], want []int64) {
		it, end := d.Begin(), d.End()
		for i := range want {
			require.False(t, it.Equal(end))
			require.Equal(t, want[i], it.Value()[0])
			require.Equal(t, want[i], (*it.Pointer())[0])
			it.Next()
		}
		require.True(t, it.Equal(end))
	}},
	{"iterator-from-const", func(t *testing.T, d *Deque[[]int64], want []int64) {
		v := d.View()
		it, end := v.Begin(), v.End()
		for i := range want {
			require.False(t, it.Equal(end))
			require.Equal(t, want[i], it.Value()[0])
			it.Next()
		}
		require.True(t, it.Equal(end))
	}},
	{"reverse iterator", func(t *testing.T, d *Deque[[]int64], want []int64) {
		it, begin := d.End(), d.Begin()
		for i := len(want) - 1; i >= 0; i-- {
			require.False(t, it.Equal(begin))
			it.Prev()
			require.Equal(t, want[i], it.Value()[0])
			require.Equal(t, i, it.Index())
		}
		require.True(t, it.Equal(begin))

		cit, cbegin := d.View().End(), d.View().Begin()
		for i := len(want) - 1; i >= 0; i-- {
			require.Equal(t, want[i], cit.Prev().Value()[0])
		}
		require.True(t, cit.Equal(cbegin))
	}},
	{"range", func(t *testing.T, d *Deque[[]int64], want []int64) {
		var got []int64
		for i, obj := range d.All() {
			require.Equal(t, len(got), i)
			got = append(got, obj[0])
		}
		require.Equal(t, want, got)

		got = got[:0]
		for i, obj := range d.View().Backward() {
			require.Equal(t, len(want)-1-len(got), i)
			got = append(got, obj[0])
		}
		slices.Reverse(got)
		require.Equal(t, len(want), len(got))
		for i := range want {
			require.Equal(t, want[i], got[i])
		}
	}},
}

func TestReadWrite(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(20220601))
	for _, slotsPerChunk := range []int{0, 4, 5} {
		for _, maker := range makers {
			for _, checker := range checkers {
				name := fmt.Sprintf("W(%s) C(%s) slots(%d)", maker.name, checker.name, slotsPerChunk)
				t.Run(name, func(t *testing.T) {
					for round := 0; round < 20; round++ {
						data := make([]int64, rnd.Intn(300))
						for i := range data {
							data[i] = rnd.Int63n(1 << 20)
						}

						d := New[[]int64]()
						if slotsPerChunk > 0 {
							d = newDeque[[]int64](slotsPerChunk)
						}
						ref := edeque.NewDeque()
						maker.fn(d, ref, data)
						checker.fn(t, d, refValues(ref))
					}
				})
			}
		}
	}
}

func TestRandomOpsAgainstReference(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(20240611))
	for _, slotsPerChunk := range []int{1, 4, 13, MaxSlotsPerChunk} {
		d := newDeque[int64](slotsPerChunk)
		ref := edeque.NewDeque()
		for op := 0; op < 20000; op++ {
			v := rnd.Int63()
			switch x := rnd.Intn(100); {
			case x < 30:
				d.PushBack(v)
				ref.PushBack(v)
			case x < 60:
				d.PushFront(v)
				ref.PushFront(v)
			case x < 78:
				got, ok := d.PopBack()
				require.Equal(t, !ref.Empty(), ok)
				if ok {
					require.Equal(t, ref.PopBack().(int64), got)
				}
			case x < 96:
				got, ok := d.PopFront()
				require.Equal(t, !ref.Empty(), ok)
				if ok {
					require.Equal(t, ref.PopFront().(int64), got)
				}
			case x < 98:
				d.Shrink()
			default:
				if rnd.Intn(20) == 0 {
					d.Clear()
					ref = edeque.NewDeque()
				}
			}

			require.Equal(t, ref.Len(), d.Len())
			if !ref.Empty() {
				front, ok := d.Front()
				require.True(t, ok)
				require.Equal(t, ref.Front().(int64), front)
				back, ok := d.Back()
				require.True(t, ok)
				require.Equal(t, ref.Back().(int64), back)
			}
			if op%211 == 0 {
				want := refValues(ref)
				require.Equal(t, len(want), len(values(d)))
				for i := range want {
					require.Equal(t, want[i], *d.Index(i))
				}
			}
		}
	}
}

func TestCloneAndMove(t *testing.T) {
	t.Parallel()

	d := newDeque[[]int64](4)
	for i := 0; i < 10; i++ {
		d.PushFront([]int64{int64(i)})
	}
	require.Equal(t, 2, d.Stats().Offset)

	c := d.Clone()
	require.Equal(t, values(d), values(c))
	require.Equal(t, 0, c.Stats().Offset)
	require.Equal(t, 3, c.Stats().Chunks)
	c.PushBack([]int64{100})
	require.Equal(t, 10, d.Len())

	// Clone copies by assignment, CloneFunc can copy deeply
	(*d.Index(0))[0] = 90
	require.Equal(t, int64(90), (*c.Index(0))[0])
	deep := d.CloneFunc(func(v []int64) []int64 {
		return slices.Clone(v)
	})
	(*d.Index(0))[0] = 91
	require.Equal(t, int64(90), (*deep.Index(0))[0])

	before := values(d)
	p := d.Index(5)
	moved := d.Move()
	require.Equal(t, before, values(moved))
	require.Same(t, p, moved.Index(5))
	require.True(t, d.Empty())
	require.Equal(t, 0, d.Stats().Chunks)
	require.True(t, d.Begin().Equal(d.End()))

	// the moved-from deque is still usable
	d.PushBack([]int64{1})
	d.PushFront([]int64{0})
	require.Equal(t, [][]int64{{0}, {1}}, values(d))
	require.Equal(t, before, values(moved))
}

func TestClearAndShrink(t *testing.T) {
	t.Parallel()

	d := newDeque[int](4)
	for i := 0; i < 20; i++ {
		d.PushBack(i)
	}
	for i := 0; i < 13; i++ {
		v, ok := d.PopFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	st := d.Stats()
	require.Equal(t, 2, st.Chunks)
	require.Equal(t, 3, st.FreeChunks)

	d.Shrink()
	freed := 0
	for _, b := range d.blocks {
		if b == nil {
			freed++
		}
	}
	require.Equal(t, 3, freed)

	for i := 20; i < 40; i++ {
		d.PushBack(i)
	}
	for i := 13; i < 40; i++ {
		require.Equal(t, i, *d.Index(i - 13))
	}

	d.Clear()
	require.True(t, d.Empty())
	require.Equal(t, 0, d.Stats().Chunks)
	require.Equal(t, 0, d.Stats().ArenaLen)
	d.PushFront(1)
	require.Equal(t, []int{1}, values(d))
}

func TestPopClearsSlot(t *testing.T) {
	t.Parallel()

	d := newDeque[*int](4)
	for i := 0; i < 6; i++ {
		v := i
		d.PushBack(&v)
	}
	s := d.lastSlot()
	p, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 5, *p)
	require.Nil(t, d.blocks[s.Chunk][s.Index])

	s = d.engine.BeginSlot()
	p, ok = d.PopFront()
	require.True(t, ok)
	require.Equal(t, 0, *p)
	require.Nil(t, d.blocks[s.Chunk][s.Index])
}

func TestRangeStopsEarly(t *testing.T) {
	t.Parallel()

	d := New[int]()
	for i := 0; i < 1000; i++ {
		d.PushBack(i)
	}
	var target int
	d.Range(func(v int) bool {
		if v >= 500 {
			target = v
			return false
		}
		return true
	})
	require.Equal(t, 500, target)

	d.RangeWithIndex(func(i int, v int) bool {
		require.Equal(t, i, v)
		return true
	})

	n := 0
	for i, v := range d.Backward() {
		require.Equal(t, i, v)
		if v == 900 {
			break
		}
		n++
	}
	require.Equal(t, 99, n)

	sum := 0
	for v := range d.Values() {
		sum += v
	}
	require.Equal(t, 999*1000/2, sum)
}

func TestZeroSizeElement(t *testing.T) {
	t.Parallel()

	d := New[struct{}]()
	for i := 0; i < 300; i++ {
		d.PushBack(struct{}{})
	}
	require.Equal(t, 3, d.Stats().Chunks)
	require.Equal(t, uint64(0), d.Stats().FootprintBytes)
	_, err := d.At(299)
	require.NoError(t, err)
}

func BenchmarkPushBack(b *testing.B) {
	b.Run("Benchmark-PushBack-Deque", func(b *testing.B) {
		d := New[int]()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			d.PushBack(i)
		}
	})

	b.Run("Benchmark-PushBack-Slice", func(b *testing.B) {
		q := make([]int, 0, 1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q = append(q, i)
		}
	})

	b.Run("Benchmark-PushBack-EdwingengDeque", func(b *testing.B) {
		q := edeque.NewDeque()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q.PushBack(i)
		}
	})
}

func BenchmarkPushFront(b *testing.B) {
	b.Run("Benchmark-PushFront-Deque", func(b *testing.B) {
		d := New[int]()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			d.PushFront(i)
		}
	})

	b.Run("Benchmark-PushFront-EdwingengDeque", func(b *testing.B) {
		q := edeque.NewDeque()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q.PushFront(i)
		}
	})
}

func BenchmarkAt(b *testing.B) {
	d := New[int]()
	for i := 0; i < 1<<16; i++ {
		d.PushBack(i)
	}
	rnd := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.At(rnd.Intn(1 << 16))
	}
}
