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
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pingcap/chunkdeque/pkg/container/chunklist"
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultProgressInterval = 10 * time.Second

// Runner runs a workload: every worker replays its own seeded operation stream
// against a deque and a reference deque.
type Runner struct {
	cfg              *Config
	clock            clock.Clock
	progressInterval time.Duration
	makeWorker       func(id int) runnable

	counters   [opCount]atomic.Uint64
	mismatches atomic.Uint64
}

// Option configures a Runner.
type Option func(r *Runner)

// WithClock sets the clock used to measure the run and to report progress.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithProgressInterval sets how often progress is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.progressInterval = d
	}
}

// NewRunner creates a Runner. cfg is adjusted, and validated by Run.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	cfg.Adjust()
	r := &Runner{
		cfg:              cfg,
		clock:            clock.New(),
		progressInterval: defaultProgressInterval,
	}
	r.makeWorker = r.newWorker
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts all workers and waits for them. Workers that diverge from the
// reference do not stop the others; all their errors are combined in the
// returned error, along with the result.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.New().String()
	log.Info("workload started",
		zap.String("runID", runID),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("ops", r.cfg.Ops),
		zap.Int64("seed", r.cfg.Seed),
		zap.String("element", r.cfg.Element))

	workers := make([]runnable, r.cfg.Workers)
	for i := range workers {
		workers[i] = r.makeWorker(i)
	}

	start := r.clock.Now()
	stop := make(chan struct{})
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		r.reportProgress(stop)
	}()

	var (
		mu          sync.Mutex
		mismatchErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			err := w.run(gctx)
			if err != nil && cerror.ErrWorkloadMismatch.Equal(errors.Cause(err)) {
				r.mismatches.Inc()
				mismatchCounter.Inc()
				log.Warn("worker diverged from reference",
					zap.String("runID", runID), zap.Int("worker", w.ID()), zap.Error(err))
				mu.Lock()
				mismatchErr = multierr.Append(mismatchErr, err)
				mu.Unlock()
				return nil
			}
			return errors.Trace(err)
		})
	}
	err := g.Wait()
	close(stop)
	<-progressDone

	res := r.result(workers, r.clock.Since(start))
	res.RunID = runID
	if err = multierr.Append(err, mismatchErr); err != nil {
		return res, err
	}
	for i, st := range res.Deques {
		log.Debug("final deque of worker", zap.Int("worker", i), zap.Any("stats", st))
	}
	log.Info("workload finished",
		zap.String("runID", runID),
		zap.Uint64("ops", res.TotalOps),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (r *Runner) newWorker(id int) runnable {
	record := func(op opType) {
		r.counters[op].Inc()
	}
	if r.cfg.Element == ElementWide {
		return newWorker(id, r.cfg, wideCodec, record)
	}
	return newWorker(id, r.cfg, intCodec, record)
}

func (r *Runner) totalOps() uint64 {
	var total uint64
	for op := range r.counters {
		total += r.counters[op].Load()
	}
	return total
}

func (r *Runner) reportProgress(stop <-chan struct{}) {
	ticker := r.clock.Ticker(r.progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			log.Info("workload progress",
				zap.Uint64("ops", r.totalOps()),
				zap.Uint64("target", uint64(r.cfg.Ops)*uint64(r.cfg.Workers)))
		}
	}
}

func (r *Runner) result(workers []runnable, elapsed time.Duration) *Result {
	res := &Result{
		Workers:    len(workers),
		Element:    r.cfg.Element,
		TotalOps:   r.totalOps(),
		Ops:        make(map[string]uint64, opCount),
		Mismatches: r.mismatches.Load(),
		Elapsed:    elapsed,
		Deques:     make([]chunklist.Stats, 0, len(workers)),
	}
	for op := opType(0); op < opCount; op++ {
		res.Ops[op.String()] = r.counters[op].Load()
	}
	for _, w := range workers {
		res.Deques = append(res.Deques, w.stats())
	}
	return res
}
