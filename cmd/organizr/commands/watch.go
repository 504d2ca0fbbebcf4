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
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/cmd/organizr/opts"
	"github.com/walteh/organizr/pkg/operation"
	"github.com/walteh/organizr/pkg/task"
	"github.com/walteh/organizr/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flags      overrides
		debounce   time.Duration
		runOnStart bool
	)

	cmd := &cobra.Command{
		Use:   "watch <task>",
		Short: "Run a task whenever its source directory changes",
		Long: `Watch keeps running until interrupted. After files matching the task's
pattern appear or change in the source directory, and the directory has
been quiet for the debounce period, the task runs again. Runs never
overlap; changes made during a run are picked up by the next one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx).With().Str("command", "watch").Logger()
			ctx = logger.WithContext(ctx)

			tasks, err := selectTasks(o, args)
			if err != nil {
				return err
			}
			t := tasks[0]
			if err := flags.apply(cmd, t); err != nil {
				return err
			}

			// fail fast instead of on the first change
			compiled, err := task.Validate(t)
			if err != nil {
				return err
			}
			if compiled.SourceIsFile {
				return errors.Errorf("task %s: watch needs a source directory, %s is a file", t.Name, compiled.SourceDir)
			}

			w, err := watch.New(watch.Options{
				Dir:        compiled.SourceDir,
				Recursive:  compiled.Recursive,
				Pattern:    compiled.NamePattern,
				Ignore:     []string{compiled.DestDir},
				Debounce:   debounce,
				RunOnStart: runOnStart,
				Trigger:    watchTrigger(o, t),
			})
			if err != nil {
				return errors.Errorf("creating watcher: %w", err)
			}

			o.Console.Header("watching " + compiled.SourceDir + " for " + t.Name)
			o.Console.Info("press Ctrl+C to stop")

			return w.Run(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a change triggers a run")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", true, "run the task once before waiting for changes")

	return cmd
}

// watchTrigger runs t once per watch pass. Each pass starts from a fresh
// copy of t so one run's state never leaks into the next.
func watchTrigger(o *opts.RootOpts, t *task.Task) watch.Trigger {
	return func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			zerolog.Ctx(ctx).Info().Int("changed", len(changed)).Msg("source changed")
		}

		next := *t
		if o.State != nil {
			o.State.Apply([]*task.Task{&next})
		}

		summary, err := executeTask(ctx, o, &next, nil, false)
		if err != nil {
			return err
		}
		return runFailure([]operation.Summary{summary})
	}
}
