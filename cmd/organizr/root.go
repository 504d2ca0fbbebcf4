// Copyright 2025 walteh LLC
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
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/cmd/organizr/opts"
	"github.com/walteh/organizr/pkg/config"
	"github.com/walteh/organizr/pkg/log"
	"github.com/walteh/organizr/pkg/state"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// loadRootOpts fills o with the task file, its state and the loggers
func loadRootOpts(ctx context.Context, o *opts.RootOpts, out io.Writer) error {
	path := configFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}
		path, err = config.FindFile(wd)
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	// state lives next to the task file
	st, err := state.New(cfg.Dir())
	if err != nil {
		return errors.Errorf("creating state: %w", err)
	}
	if err := st.Load(ctx); err != nil {
		return errors.Errorf("loading state: %w", err)
	}

	o.Config = cfg
	o.State = st
	o.UserLogger = state.NewUserLogger(ctx)
	o.Console = log.NewWithZerolog(out, *zerolog.Ctx(ctx))
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "task file path (default: organizr.{yaml,yml,hcl,json} or .organizr in the working directory)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
