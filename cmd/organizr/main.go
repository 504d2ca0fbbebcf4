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
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/cmd/organizr/commands"
	"github.com/walteh/organizr/cmd/organizr/opts"
)

func main() {
	// first Ctrl+C interrupts the current run, the runtime handles the second
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootOpts := &opts.RootOpts{}
	rootCmd := NewCommand(rootOpts)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// NewCommand builds the organizr command tree. rootOpts is filled before
// any subcommand runs.
func NewCommand(rootOpts *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "organizr",
		Short: "Sort files into date-based folders",
		Long: `organizr copies or moves files into a folder tree built from each
file's date: the EXIF original date of a photo, or its created or
modified time. Tasks are defined in a task file next to which
organizr keeps a small state file recording when each task last ran.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(ctx)
			return loadRootOpts(ctx, rootOpts, cmd.OutOrStdout())
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewListCmd(rootOpts),
		commands.NewWatchCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}
