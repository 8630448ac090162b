// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log/slog"
	"os"

	"github.com/blinklabs-io/tokenreg/internal/config"
	"github.com/blinklabs-io/tokenreg/internal/node"
	"github.com/spf13/cobra"
)

func loadRun(args []string, cfg *config.Config) {
	logger := commonRun()
	if err := node.Load(cfg, logger, args[0]); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func loadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <seed-file>",
		Short: "Import accounts and assets from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			loadRun(args, configFromCommand(cmd))
		},
	}
	return cmd
}

func repairRun(cfg *config.Config) {
	logger := commonRun()
	if err := node.Repair(cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func repairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Remove descriptor entries left behind by a partial commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			repairRun(configFromCommand(cmd))
		},
	}
	return cmd
}
