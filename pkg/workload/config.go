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
	"runtime"

	cerror "github.com/pingcap/chunkdeque/pkg/errors"
)

// Element types a workload can store in its deques.
const (
	// ElementInt stores int64 values, the densest layout.
	ElementInt = "int"
	// ElementWide stores 512 byte arrays, which get the minimum number of
	// slots per chunk.
	ElementWide = "wide"
)

const (
	defaultOps            = 100000
	defaultWorkers        = 4
	defaultSeed           = 20240611
	defaultPushFrontRatio = 0.5
	defaultPopRatio       = 0.4
	defaultAccessRatio    = 0.2
	defaultCheckInterval  = 1000
)

// Config is the configuration of a workload run.
type Config struct {
	// Ops is the number of operations every worker performs.
	Ops int `toml:"ops" json:"ops"`
	// Workers is the number of workers, each owning its own deque.
	Workers int   `toml:"workers" json:"workers"`
	Seed    int64 `toml:"seed" json:"seed"`
	// PushFrontRatio is the share of pushes that go to the front.
	PushFrontRatio float64 `toml:"push-front-ratio" json:"push-front-ratio"`
	// PopRatio is the share of operations that pop an element, from either end.
	PopRatio float64 `toml:"pop-ratio" json:"pop-ratio"`
	// AccessRatio is the share of operations that read or write an element
	// by index. The remaining operations push.
	AccessRatio float64 `toml:"access-ratio" json:"access-ratio"`
	// CheckInterval is the number of operations between two full
	// comparisons with the reference. 0 disables them.
	CheckInterval int    `toml:"check-interval" json:"check-interval"`
	Element       string `toml:"element" json:"element"`
	// TPS limits the operations per second of all workers together. 0 means
	// no limit.
	TPS int `toml:"tps" json:"tps"`
}

// NewDefaultConfig returns the default workload config.
func NewDefaultConfig() *Config {
	return &Config{
		Ops:            defaultOps,
		Workers:        defaultWorkers,
		Seed:           defaultSeed,
		PushFrontRatio: defaultPushFrontRatio,
		PopRatio:       defaultPopRatio,
		AccessRatio:    defaultAccessRatio,
		CheckInterval:  defaultCheckInterval,
		Element:        ElementInt,
	}
}

// Adjust fills the fields left empty. Workers defaults to the number of CPUs.
func (c *Config) Adjust() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Element == "" {
		c.Element = ElementInt
	}
}

// Validate checks the config and returns ErrInvalidWorkloadConfig on the first
// invalid field.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return cerror.ErrInvalidWorkloadConfig.GenWithStackByArgs(fmt.Sprintf(format, args...))
	}

	if c.Ops <= 0 {
		return invalid("ops must be positive, got %d", c.Ops)
	}
	if c.Workers <= 0 {
		return invalid("workers must be positive, got %d", c.Workers)
	}
	if c.TPS < 0 {
		return invalid("tps must not be negative, got %d", c.TPS)
	}
	if c.CheckInterval < 0 {
		return invalid("check-interval must not be negative, got %d", c.CheckInterval)
	}
	ratios := []struct {
		name  string
		value float64
	}{
		{"push-front-ratio", c.PushFrontRatio},
		{"pop-ratio", c.PopRatio},
		{"access-ratio", c.AccessRatio},
	}
	for _, ratio := range ratios {
		if ratio.value < 0 || ratio.value > 1 {
			return invalid("%s must be in [0, 1], got %v", ratio.name, ratio.value)
		}
	}
	if c.PopRatio+c.AccessRatio > 1 {
		return invalid("pop-ratio plus access-ratio must not exceed 1, got %v", c.PopRatio+c.AccessRatio)
	}
	switch c.Element {
	case ElementInt, ElementWide:
	default:
		return invalid("unknown element %q", c.Element)
	}
	return nil
}
