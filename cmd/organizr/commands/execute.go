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
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/organizr/cmd/organizr/opts"
	"github.com/walteh/organizr/pkg/log"
	"github.com/walteh/organizr/pkg/operation"
	"github.com/walteh/organizr/pkg/status"
	"github.com/walteh/organizr/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// selectTasks returns the named tasks, or every task when names is empty.
// Recorded last run times are applied to the result.
func selectTasks(o *opts.RootOpts, names []string) ([]*task.Task, error) {
	var tasks []*task.Task
	if len(names) == 0 {
		all, err := o.Config.All()
		if err != nil {
			return nil, err
		}
		tasks = all
	} else {
		seen := map[string]bool{}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			t, err := o.Config.Find(name)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}

	if o.State != nil {
		o.State.Apply(tasks)
	}
	return tasks, nil
}

// 🏃 executeTask runs one task, rendering its events on the console and
// feeding them to tracker. progress swaps the per-file lines for a
// progress bar; skips and errors are still printed.
func executeTask(ctx context.Context, o *opts.RootOpts, t *task.Task, tracker *status.Manager, progress bool) (operation.Summary, error) {
	console := o.Console

	console.StartTask(ctx, log.TaskOperation{
		Name:        t.Name,
		Command:     t.Command.String(),
		Source:      t.SourceDir,
		Destination: t.DestDir,
		DryRun:      t.DryRun,
	})

	var bar *pterm.ProgressbarPrinter
	stopBar := func() {
		if bar != nil {
			_, _ = bar.Stop()
			bar = nil
		}
	}
	defer stopBar()

	handler := func(ev operation.Event) {
		if tracker != nil {
			tracker.Observe(ctx, ev)
		}

		if !progress {
			console.HandleEvent(ctx, ev)
			return
		}

		switch {
		case ev.Kind == operation.EventProgress && ev.Current == 0 && ev.Total > 0:
			b, err := pterm.DefaultProgressbar.WithTotal(ev.Total).WithTitle(t.Name).Start()
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("starting progress bar")
				return
			}
			bar = b
		case ev.Kind == operation.EventProgress && bar != nil:
			bar.Increment()
		case ev.Kind == operation.EventLog && ev.Outcome != nil && ev.Outcome.Kind == operation.OutcomeTransferred:
			// shown by the bar
		case ev.Kind.Terminal():
			stopBar()
			console.HandleEvent(ctx, ev)
		default:
			console.HandleEvent(ctx, ev)
		}
	}

	var store operation.LastRunStore
	if o.State != nil {
		store = o.State
	}

	runner := operation.NewRunner(zerolog.Ctx(ctx), handler)
	return runner.Run(ctx, operation.Options{Task: t, Store: store})
}

// runFailure reports the tasks whose summary marks them as failed.
func runFailure(summaries []operation.Summary) error {
	var failed []string
	for _, s := range summaries {
		if s.Failed() {
			failed = append(failed, s.Task)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.Errorf("%d of %d tasks failed: %s", len(failed), len(summaries), strings.Join(failed, ", "))
}
