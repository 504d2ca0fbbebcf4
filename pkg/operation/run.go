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
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/discover"
	"github.com/walteh/organizr/pkg/resolve"
	"github.com/walteh/organizr/pkg/task"
	"github.com/walteh/organizr/pkg/transfer"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// EmptyListMessage is logged when discovery finds nothing to process.
const EmptyListMessage = "file list empty"

// State is the lifecycle position of a Run.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// 🗄️ LastRunStore persists the time a task last moved files.
type LastRunStore interface {
	RecordLastRun(ctx context.Context, taskName string, at time.Time) error
}

// 🔧 Options configures a Run.
type Options struct {
	// Task is required. The run works on a validated copy of it.
	Task *task.Task
	// Store is optional; without it the last run time is not persisted.
	Store LastRunStore
	// Resolver defaults to resolve.New().
	Resolver DateResolver
	// FileSystem defaults to transfer.NewManager().
	FileSystem FileSystem
	// Clock defaults to time.Now.
	Clock func() time.Time
	// EventBuffer is the capacity of the event channel. Defaults to 64.
	EventBuffer int
}

// 🏃 Run is a single execution of a task, driven by one background worker.
//
// The channel returned by Start must be drained until it is closed; the
// worker blocks while the buffer is full.
type Run struct {
	opts Options

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	canceled bool
	group    *errgroup.Group
	compiled *task.Compiled
	summary  Summary
	err      error
	events   chan Event
}

// 🏭 New creates an idle run.
func New(opts Options) (*Run, error) {
	if opts.Task == nil {
		return nil, errors.Errorf("task is required")
	}
	if opts.Resolver == nil {
		opts.Resolver = resolve.New()
	}
	if opts.FileSystem == nil {
		opts.FileSystem = transfer.NewManager()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Run{opts: opts}, nil
}

// State returns the current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Task returns the validated copy the run is working on, nil before Start.
// Its LastRun is updated when the run records one.
func (r *Run) Task() *task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compiled == nil {
		return nil
	}
	t := r.compiled.Task
	return &t
}

// ▶️ Start validates the task and launches the worker. A validation error is
// returned synchronously and leaves the run idle.
func (r *Run) Start(ctx context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle || r.events != nil {
		return nil, errors.Errorf("run already started")
	}

	compiled, err := task.Validate(r.opts.Task)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if r.canceled {
		cancel()
	}

	r.compiled = compiled
	r.cancel = cancel
	r.state = StateRunning
	r.events = make(chan Event, r.opts.EventBuffer)
	r.summary = Summary{Task: compiled.Name, DryRun: compiled.DryRun}

	r.group = &errgroup.Group{}
	r.group.Go(func() error {
		defer cancel()
		return r.work(runCtx)
	})

	return r.events, nil
}

// ⏹️ Cancel asks the worker to stop. The file currently being transferred
// is finished first. Cancelling an idle run makes its Start stop at the
// first check point.
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canceled = true
	if r.cancel != nil {
		r.cancel()
	}
}

// ⏳ Wait blocks until the worker has exited and returns the summary. The
// error is non-nil only when the run failed; an interrupted run is not an
// error.
func (r *Run) Wait() (Summary, error) {
	r.mu.Lock()
	group := r.group
	r.mu.Unlock()

	if group == nil {
		return Summary{}, errors.Errorf("run not started")
	}
	_ = group.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, r.err
}

func (r *Run) emit(ev Event) {
	ev.Task = r.compiled.Name
	r.events <- ev
}

func (r *Run) finish(state State, ev Event, err error) error {
	r.mu.Lock()
	r.state = state
	r.err = err
	summary := r.summary
	r.mu.Unlock()

	ev.Summary = &summary
	r.emit(ev)
	close(r.events)
	return err
}

func (r *Run) work(ctx context.Context) error {
	t := r.compiled
	logger := zerolog.Ctx(ctx).With().Str("task", t.Name).Logger()
	ctx = logger.WithContext(ctx)

	begin := r.opts.Clock()
	elapsed := func() {
		r.mu.Lock()
		r.summary.Elapsed = r.opts.Clock().Sub(begin)
		r.mu.Unlock()
	}

	interrupted := func() error {
		elapsed()
		r.mu.Lock()
		r.summary.Status = StatusAborted
		r.summary.Interrupted = true
		r.mu.Unlock()
		logger.Info().Msg("run interrupted")
		return r.finish(StateAborted, Event{Kind: EventInterrupted}, nil)
	}

	failed := func(err error) error {
		elapsed()
		r.mu.Lock()
		r.summary.Status = StatusAborted
		r.mu.Unlock()
		logger.Error().Err(err).Msg("run failed")
		return r.finish(StateAborted, Event{Kind: EventFailed, Message: err.Error()}, err)
	}

	r.emit(Event{Kind: EventStarted})
	logger.Info().Str("task", t.String()).Msg("run started")

	r.emit(Event{Kind: EventProcessingStarted})

	candidates, err := discover.Discover(ctx, discover.Options{
		Root:        t.SourceDir,
		Pattern:     t.NamePattern,
		Recursive:   t.Recursive,
		FollowLinks: t.FollowLinks,
	})
	if err != nil {
		if errors.Is(err, discover.ErrInterrupted) {
			return interrupted()
		}
		return failed(errors.Errorf("discovering files: %w", err))
	}

	total := len(candidates)
	r.mu.Lock()
	r.summary.Total = total
	r.mu.Unlock()

	r.emit(Event{Kind: EventProgress, Current: 0, Total: total})

	if total == 0 {
		r.emit(Event{Kind: EventLog, Message: EmptyListMessage})
	}

	exec := NewExecutor(t, r.opts.Resolver, r.opts.FileSystem)

	for i, c := range candidates {
		if ctx.Err() != nil {
			return interrupted()
		}

		outcome := exec.Process(ctx, c)

		r.mu.Lock()
		r.summary.add(outcome)
		r.mu.Unlock()

		r.emit(Event{Kind: EventLog, Message: outcome.Line(), Outcome: &outcome})

		if outcome.Fatal() {
			return failed(outcome.Err)
		}

		r.emit(Event{Kind: EventProgress, Current: i + 1, Total: total})
	}

	elapsed()

	r.mu.Lock()
	transferred := r.summary.Transferred
	r.mu.Unlock()

	if transferred > 0 && !t.DryRun {
		r.recordLastRun(ctx)
	}

	logger.Info().Int("transferred", transferred).Msg("run completed")
	return r.finish(StateCompleted, Event{Kind: EventFinished}, nil)
}

func (r *Run) recordLastRun(ctx context.Context) {
	now := r.opts.Clock()

	r.mu.Lock()
	r.compiled.LastRun = now
	r.mu.Unlock()

	if r.opts.Store == nil {
		return
	}
	// the files are already in place, so a store failure is only reported
	if err := r.opts.Store.RecordLastRun(ctx, r.compiled.Name, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("recording last run")
		r.emit(Event{Kind: EventLog, Message: "recording last run: " + err.Error()})
	}
}
