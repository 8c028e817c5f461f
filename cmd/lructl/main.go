// Copyright 2023 The acquirecloud Authors
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
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/solarisdb/lrukit/golibs/context"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/pkg/replay"
	"github.com/spf13/cobra"
	"os"
	"syscall"
)

var (
	cfgFile  string
	logLevel string
)

func main() {
	ctx, cancel := context.NewSignalsContext(os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lructl",
		Short:        "lructl replays scripts of operations against the LRU cache",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.yaml or .json), LRUKIT_* environment variables override it")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error, warn, info, debug or trace")

	root.AddCommand(&cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replays put/get/peek/remove/clear/filter/len/keys operations against a new cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := prepare(args[0])
			if err != nil {
				return err
			}
			return replay.RunCache(s, cfg.Capacity, cmd.OutOrStdout())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "kv <script.yaml>",
		Short: "Replays put/get/delete/invalidate/where/keys/len operations against the cached records storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := prepare(args[0])
			if err != nil {
				return err
			}
			return replay.RunKV(cmd.Context(), cfg, s, cmd.OutOrStdout())
		},
	})
	return root
}

func prepare(scriptFile string) (*replay.Config, *replay.Script, error) {
	cfg, err := replay.BuildConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logging.SetLevel(lvl)

	log := logging.NewLogger("lructl")
	log.Debugf("config: %s", spew.Sdump(cfg))

	s, err := replay.LoadScript(scriptFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load the script: %w", err)
	}
	log.Infof("%d operations are loaded from %s", len(s.Ops), scriptFile)
	return cfg, s, nil
}
