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
	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chunkdeque",
			Subsystem: "workload",
			Name:      "ops_total",
			Help:      "Total number of operations applied to the deques",
		}, []string{"op"})
	mismatchCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chunkdeque",
			Subsystem: "workload",
			Name:      "mismatch_total",
			Help:      "Total number of workers that diverged from the reference",
		})
	chunksGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "chunkdeque",
			Subsystem: "workload",
			Name:      "chunks",
			Help:      "Number of chunks linked in the deque of a worker",
		}, []string{"worker"})
	lenGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "chunkdeque",
			Subsystem: "workload",
			Name:      "len",
			Help:      "Number of elements in the deque of a worker",
		}, []string{"worker"})
)

// InitMetrics registers all metrics in this file
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(opsCounter)
	registry.MustRegister(mismatchCounter)
	registry.MustRegister(chunksGauge)
	registry.MustRegister(lenGauge)
}
