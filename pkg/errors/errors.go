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

package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// container related errors
	ErrIndexOutOfRange = errors.Normalize(
		"index %d out of range [0, %d)",
		errors.RFCCodeText("DEQUE:ErrIndexOutOfRange"),
	)
	ErrEmptyContainer = errors.Normalize(
		"container is empty",
		errors.RFCCodeText("DEQUE:ErrEmptyContainer"),
	)
	ErrNegativeCount = errors.Normalize(
		"count must not be negative, got %d",
		errors.RFCCodeText("DEQUE:ErrNegativeCount"),
	)
	ErrNotEnoughElements = errors.Normalize(
		"not enough elements, want %d, have %d",
		errors.RFCCodeText("DEQUE:ErrNotEnoughElements"),
	)

	// workload related errors
	ErrInvalidWorkloadConfig = errors.Normalize(
		"invalid workload config, %s",
		errors.RFCCodeText("DEQUE:ErrInvalidWorkloadConfig"),
	)
	ErrWorkloadMismatch = errors.Normalize(
		"worker %d diverged from reference after %d ops: %s",
		errors.RFCCodeText("DEQUE:ErrWorkloadMismatch"),
	)
	ErrLoadConfigFile = errors.Normalize(
		"load config file %s failed",
		errors.RFCCodeText("DEQUE:ErrLoadConfigFile"),
	)
	ErrInvalidLogLevel = errors.Normalize(
		"invalid log level %s",
		errors.RFCCodeText("DEQUE:ErrInvalidLogLevel"),
	)
	ErrMetricsServer = errors.Normalize(
		"metrics server on %s failed",
		errors.RFCCodeText("DEQUE:ErrMetricsServer"),
	)
)
