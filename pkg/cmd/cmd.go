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

package cmd

import (
	"github.com/pingcap/chunkdeque/pkg/cmd/check"
	"github.com/pingcap/chunkdeque/pkg/cmd/util"
	"github.com/spf13/cobra"
)

// NewCmd creates the root command of deque-check.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deque-check",
		Short: "Checks the chunked deque against a reference deque",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.AddCommand(check.NewCmdRun())
	return cmd
}

// Run runs the root command.
func Run() {
	cmd := NewCmd()
	util.CheckErr(cmd.Execute())
}
