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

package check

import (
	"github.com/fatih/color"
	"github.com/pingcap/chunkdeque/pkg/cmd/util"
	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/pingcap/chunkdeque/pkg/logutil"
	"github.com/pingcap/chunkdeque/pkg/workload"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// options defines flags for the `run` command.
type options struct {
	configFile  string
	ops         int
	workers     int
	seed        int64
	element     string
	tps         int
	logLevel    string
	logFile     string
	metricsAddr string
	json        bool

	cfg *workload.Config
}

// newOptions creates new options for the `run` command.
func newOptions() *options {
	return &options{cfg: workload.NewDefaultConfig()}
}

// addFlags binds the flags of the `run` command to fs.
func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configFile, "config", "", "path of the workload config file")
	fs.IntVar(&o.ops, "ops", 0, "number of operations every worker performs")
	fs.IntVar(&o.workers, "workers", 0, "number of workers, each owning its own deque")
	fs.Int64Var(&o.seed, "seed", 0, "seed of the random operation streams")
	fs.StringVar(&o.element, "element", "", "element type stored in the deques (int|wide)")
	fs.IntVar(&o.tps, "tps", 0, "limit of operations per second of all workers, 0 for no limit")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (etc: debug|info|warn|error)")
	fs.StringVar(&o.logFile, "log-file", "", "log file path, leave empty to log to stderr")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	fs.BoolVar(&o.json, "json", false, "print the result in JSON format")
}

// complete loads the config file, then applies the flags set on the command
// line over it.
func (o *options) complete(cmd *cobra.Command) error {
	if o.configFile != "" {
		if err := util.StrictDecodeFile(o.configFile, "deque-check", o.cfg); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ops") {
		o.cfg.Ops = o.ops
	}
	if flags.Changed("workers") {
		o.cfg.Workers = o.workers
	}
	if flags.Changed("seed") {
		o.cfg.Seed = o.seed
	}
	if flags.Changed("element") {
		o.cfg.Element = o.element
	}
	if flags.Changed("tps") {
		o.cfg.TPS = o.tps
	}
	o.cfg.Adjust()
	return o.cfg.Validate()
}

// run runs the workload and prints its result.
func (o *options) run(cmd *cobra.Command) error {
	registry := prometheus.NewRegistry()
	workload.InitMetrics(registry)
	if o.metricsAddr != "" {
		srv, err := startMetricsServer(o.metricsAddr, registry)
		if err != nil {
			return err
		}
		defer srv.close()
	}

	res, err := workload.NewRunner(o.cfg).Run(cmd.Context())
	if res != nil {
		if o.json {
			if perr := util.JSONPrint(cmd, res); perr != nil {
				log.Warn("print result failed", zap.Error(perr))
			}
		} else {
			cmd.Print(res.Summary())
			cmd.Print(verdict(res, err))
		}
	}
	return err
}

// verdict tells a divergence apart from a run that was stopped early.
func verdict(res *workload.Result, err error) string {
	switch {
	case res.Mismatches > 0 || cerror.ErrWorkloadMismatch.Equal(errors.Cause(err)):
		return color.HiRedString("[FAIL] deque diverged from the reference\n")
	case err != nil:
		return color.HiYellowString("[ABORTED] run stopped before completion: %s\n", errors.Cause(err))
	default:
		return color.HiGreenString("[PASS] deque matched the reference\n")
	}
}

// NewCmdRun creates the `run` command.
func NewCmdRun() *cobra.Command {
	o := newOptions()
	command := &cobra.Command{
		Use:   "run",
		Short: "Replay random operation streams against the deque and a reference deque",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}
			cancel := util.InitCmd(cmd, &logutil.Config{Level: o.logLevel, File: o.logFile})
			defer cancel()

			done := make(chan struct{})
			defer close(done)
			// The first signal stops the workers, the run returns once they exit.
			util.InitSignalHandling(func() <-chan struct{} {
				cancel()
				return done
			}, cancel)

			return o.run(cmd)
		},
	}
	o.addFlags(command.Flags())

	return command
}
