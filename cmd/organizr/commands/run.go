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


package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/cmd/organizr/opts"
	"github.com/walteh/organizr/pkg/operation"
	"github.com/walteh/organizr/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flags    overrides
		progress bool
		report   string
	)

	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Organize files for one or more tasks",
		Long: `Run processes the named tasks one after the other, or every task in the
task file when no name is given. For each task it will:
1. Find the source files matching the task's pattern
2. Work out each file's date and destination folder
3. Copy or move the file there, skipping existing files unless replacing
4. Record the time of the run when at least one file was transferred

The command fails when a task is aborted or any file could not be
processed. Ctrl+C stops after the current file.`,
		Example: `  organizr run photos
  organizr run --dry-run --date-pattern yyyy/MM photos
  organizr run --progress --report report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx).With().Str("command", "run").Logger()
			ctx = logger.WithContext(ctx)

			tasks, err := selectTasks(o, args)
			if err != nil {
				return err
			}

			tracker := status.New(&logger)
			var summaries []operation.Summary

			for _, t := range tasks {
				if err := flags.apply(cmd, t); err != nil {
					return err
				}

				summary, err := executeTask(ctx, o, t, tracker, progress)
				if err != nil && summary.Task == "" {
					// never started
					return errors.Errorf("task %s: %w", t.Name, err)
				}
				summaries = append(summaries, summary)

				if summary.Interrupted || ctx.Err() != nil {
					o.Console.Warning("interrupted, remaining tasks skipped")
					break
				}
			}

			if report != "" {
				if err := tracker.WriteReport(ctx, report); err != nil {
					return errors.Errorf("writing report: %w", err)
				}
				o.Console.Infof("report written to %s", report)
			}

			return runFailure(summaries)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "show a progress bar instead of one line per file")
	cmd.Flags().StringVar(&report, "report", "", "write a JSON report of every processed file to this path")

	return cmd
}
