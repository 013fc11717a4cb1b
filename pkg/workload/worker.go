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

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strconv"

	edeque "github.com/edwingeng/deque"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pingcap/chunkdeque/pkg/container/chunklist"
	"github.com/pingcap/chunkdeque/pkg/container/deque"
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

type opType int

const (
	opPushBack opType = iota
	opPushFront
	opPopBack
	opPopFront
	opRead
	opWrite
	opCheck
	opCount
)

var opNames = [opCount]string{
	opPushBack:  "push_back",
	opPushFront: "push_front",
	opPopBack:   "pop_back",
	opPopFront:  "pop_front",
	opRead:      "read",
	opWrite:     "write",
	opCheck:     "check",
}

func (o opType) String() string {
	return opNames[o]
}

// ctxCheckInterval is how many operations a worker performs between two
// checks of its context.
const ctxCheckInterval = 256

// runnable hides the element type of a worker from the runner.
type runnable interface {
	ID() int
	run(ctx context.Context) error
	stats() chunklist.Stats
}

// worker applies a random operation stream to a deque and to a reference deque
// of keys, and compares them.
type worker[T any] struct {
	id    int
	cfg   *Config
	rnd   *rand.Rand
	codec codec[T]
	d     *deque.Deque[T]
	ref   edeque.Deque

	// done is the number of operations performed so far
	done    int
	nextKey int64
	record  func(op opType)
	limiter *rate.Limiter

	opsCounters [opCount]prometheus.Counter
	chunksGauge prometheus.Gauge
	lenGauge    prometheus.Gauge
}

func newWorker[T any](id int, cfg *Config, c codec[T], record func(op opType)) *worker[T] {
	w := &worker[T]{
		id:     id,
		cfg:    cfg,
		rnd:    rand.New(rand.NewSource(cfg.Seed + int64(id))),
		codec:  c,
		d:      deque.New[T](),
		ref:    edeque.NewDeque(),
		record: record,
	}
	for op := opType(0); op < opCount; op++ {
		w.opsCounters[op] = opsCounter.WithLabelValues(op.String())
	}
	if cfg.TPS > 0 {
		// fractional limits keep the sum at TPS when TPS < Workers
		w.limiter = rate.NewLimiter(rate.Limit(float64(cfg.TPS)/float64(cfg.Workers)), 1)
	}
	label := strconv.Itoa(id)
	w.chunksGauge = chunksGauge.WithLabelValues(label)
	w.lenGauge = lenGauge.WithLabelValues(label)
	return w
}

func (w *worker[T]) ID() int {
	return w.id
}

func (w *worker[T]) stats() chunklist.Stats {
	return w.d.Stats()
}

func (w *worker[T]) run(ctx context.Context) error {
	for w.done < w.cfg.Ops {
		if w.done%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Trace(err)
			}
		}
		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return errors.Trace(err)
			}
		}
		op, err := w.step()
		w.done++
		w.opsCounters[op].Inc()
		if w.record != nil {
			w.record(op)
		}
		if err != nil {
			return err
		}
	}
	return w.check()
}

func (w *worker[T]) step() (opType, error) {
	if w.cfg.CheckInterval > 0 && (w.done+1)%w.cfg.CheckInterval == 0 {
		return opCheck, w.check()
	}

	r := w.rnd.Float64()
	switch {
	case r < w.cfg.PopRatio:
		if w.rnd.Intn(2) == 0 {
			return opPopFront, w.popFront()
		}
		return opPopBack, w.popBack()
	case r < w.cfg.PopRatio+w.cfg.AccessRatio:
		if w.rnd.Intn(2) == 0 {
			return opRead, w.read()
		}
		return opWrite, w.write()
	default:
		if w.rnd.Float64() < w.cfg.PushFrontRatio {
			w.pushFront()
			return opPushFront, nil
		}
		w.pushBack()
		return opPushBack, nil
	}
}

func (w *worker[T]) newKey() int64 {
	w.nextKey++
	return w.nextKey
}

func (w *worker[T]) pushBack() {
	key := w.newKey()
	w.d.EmplaceBack(func(p *T) { w.codec.fill(p, key) })
	w.ref.PushBack(key)
}

func (w *worker[T]) pushFront() {
	key := w.newKey()
	w.d.EmplaceFront(func(p *T) { w.codec.fill(p, key) })
	w.ref.PushFront(key)
}

func (w *worker[T]) popBack() error {
	v, ok := w.d.PopBack()
	if w.ref.Empty() {
		if ok {
			return w.mismatch("pop_back on empty deque returned key %d", w.codec.key(v))
		}
		return nil
	}
	want := w.ref.PopBack().(int64)
	if !ok {
		return w.mismatch("pop_back found no element, want key %d", want)
	}
	if got := w.codec.key(v); got != want {
		return w.mismatch("pop_back returned key %d, want %d", got, want)
	}
	return nil
}

func (w *worker[T]) popFront() error {
	v, ok := w.d.PopFront()
	if w.ref.Empty() {
		if ok {
			return w.mismatch("pop_front on empty deque returned key %d", w.codec.key(v))
		}
		return nil
	}
	want := w.ref.PopFront().(int64)
	if !ok {
		return w.mismatch("pop_front found no element, want key %d", want)
	}
	if got := w.codec.key(v); got != want {
		return w.mismatch("pop_front returned key %d, want %d", got, want)
	}
	return nil
}

// index picks a random logical index, and the signed form used to access it.
func (w *worker[T]) index(n int) (int, int) {
	i := w.rnd.Intn(n)
	if w.rnd.Intn(2) == 0 {
		return i, i - n
	}
	return i, i
}

func (w *worker[T]) read() error {
	n := w.ref.Len()
	if n == 0 {
		if _, err := w.d.At(0); !cerror.IsIndexOutOfRange(err) {
			return w.mismatch("read on empty deque returned %v", err)
		}
		return nil
	}
	i, signed := w.index(n)
	p, err := w.d.At(signed)
	if err != nil {
		return w.mismatch("read at %d failed: %v", signed, err)
	}
	want := refAt(w.ref, i)
	if got := w.codec.key(*p); got != want {
		return w.mismatch("read at %d returned key %d, want %d", signed, got, want)
	}
	return nil
}

func (w *worker[T]) write() error {
	n := w.ref.Len()
	if n == 0 {
		if _, err := w.d.At(-1); !cerror.IsIndexOutOfRange(err) {
			return w.mismatch("write on empty deque returned %v", err)
		}
		return nil
	}
	i, signed := w.index(n)
	key := w.newKey()
	var v T
	w.codec.fill(&v, key)
	if err := w.d.Set(signed, v); err != nil {
		return w.mismatch("write at %d failed: %v", signed, err)
	}
	refSet(w.ref, i, key)
	return nil
}

// check compares the whole content of the deque with the reference, through
// both iteration directions.
func (w *worker[T]) check() error {
	want := refValues(w.ref)
	if w.d.Len() != len(want) {
		return w.mismatch("length %d, want %d", w.d.Len(), len(want))
	}

	st := w.d.Stats()
	w.chunksGauge.Set(float64(st.Chunks))
	w.lenGauge.Set(float64(st.Size))
	if st.Size > 0 && st.Size+st.Offset > st.Capacity() {
		return w.mismatch("%d elements at offset %d overflow %d chunks", st.Size, st.Offset, st.Chunks)
	}

	got := make([]int64, 0, len(want))
	for it := w.d.Begin(); !it.Equal(w.d.End()); it.Next() {
		got = append(got, w.codec.key(it.Value()))
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return w.mismatch("forward iteration differs (-want +got):\n%s", diff)
	}

	got = got[:0]
	v := w.d.View()
	for it := v.End(); !it.Equal(v.Begin()) && len(got) <= len(want); {
		got = append(got, w.codec.key(it.Prev().Value()))
	}
	slices.Reverse(got)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return w.mismatch("backward iteration differs (-want +got):\n%s", diff)
	}
	return nil
}

func (w *worker[T]) mismatch(format string, args ...interface{}) error {
	return cerror.ErrWorkloadMismatch.GenWithStackByArgs(w.id, w.done, fmt.Sprintf(format, args...))
}
