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
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pingcap/chunkdeque/pkg/container/chunklist"
)

// Result is the outcome of a workload run.
type Result struct {
	// RunID identifies the run in the logs.
	RunID    string            `json:"run-id"`
	Workers  int               `json:"workers"`
	Element  string            `json:"element"`
	TotalOps uint64            `json:"total-ops"`
	Ops      map[string]uint64 `json:"ops"`
	// Mismatches is the number of workers that diverged from the reference.
	Mismatches uint64        `json:"mismatches"`
	Elapsed    time.Duration `json:"elapsed"`
	// Deques holds the final stats of the deque of every worker.
	Deques []chunklist.Stats `json:"deques"`
}

// Summary renders the result for humans.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ops by %d workers on %s elements in %s",
		humanize.Comma(int64(r.TotalOps)), r.Workers, r.Element, r.Elapsed)
	if r.Elapsed > 0 {
		rate := float64(r.TotalOps) / r.Elapsed.Seconds()
		fmt.Fprintf(&b, " (%s ops/s)", humanize.Comma(int64(rate)))
	}
	b.WriteString("\n")

	for op := opType(0); op < opCount; op++ {
		if n := r.Ops[op.String()]; n > 0 {
			fmt.Fprintf(&b, "  %-10s %s\n", op.String(), humanize.Comma(int64(n)))
		}
	}
	for i, st := range r.Deques {
		fmt.Fprintf(&b, "  worker %d: %s elements in %d chunks of %d slots, %d recycled, %s reserved\n",
			i, humanize.Comma(int64(st.Size)), st.Chunks, st.SlotsPerChunk, st.FreeChunks,
			humanize.Bytes(st.FootprintBytes))
	}
	if r.Mismatches > 0 {
		fmt.Fprintf(&b, "%d workers diverged from the reference\n", r.Mismatches)
	} else {
		b.WriteString("all workers matched the reference\n")
	}
	return b.String()
}
