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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// EventHandler observes the events of a run, in order.
type EventHandler func(Event)

// 🏃 Runner executes runs and forwards their events to a handler.
type Runner struct {
	logger  *zerolog.Logger
	handler EventHandler
}

// 🏗️ NewRunner creates a new runner. A nil handler discards events.
func NewRunner(logger *zerolog.Logger, handler EventHandler) *Runner {
	if handler == nil {
		handler = func(Event) {}
	}
	return &Runner{
		logger:  logger,
		handler: handler,
	}
}

// 🏃 Run starts a run for opts, drains its events and waits for it. The
// run is cancelled when ctx is.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if r.logger != nil && zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		ctx = r.logger.WithContext(ctx)
	}

	run, err := New(opts)
	if err != nil {
		return Summary{}, errors.Errorf("creating run: %w", err)
	}

	events, err := run.Start(ctx)
	if err != nil {
		return Summary{}, err
	}

	for ev := range events {
		r.handler(ev)
	}

	return run.Wait()
}
