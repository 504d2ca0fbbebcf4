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


package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Trigger runs one pass over the watched directory. changed holds the paths
// that settled since the previous pass, sorted; it is empty for the initial
// pass.
type Trigger func(ctx context.Context, changed []string) error

// 🔧 Options configures a Watcher.
type Options struct {
	// Dir is the directory to watch. Required.
	Dir string
	// Recursive also watches subdirectories, including ones created later.
	Recursive bool
	// Pattern filters file events by base name. Empty matches everything.
	Pattern string
	// Ignore lists path prefixes whose events are dropped, typically the
	// destination of the task when it lives under Dir.
	Ignore []string
	// Debounce is how long the directory must stay quiet before a pass.
	Debounce time.Duration
	// RunOnStart triggers a pass as soon as the watcher is ready.
	RunOnStart bool
	// Trigger is called for every pass. Required.
	Trigger Trigger
}

// 👀 Watcher runs a Trigger whenever the watched directory settles after a
// change. Passes never overlap: changes seen during a pass are batched into
// the next one.
type Watcher struct {
	opts Options
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	passes  int
	lastErr error

	fire chan struct{}
}

// 🏭 New creates a watcher. Nothing is watched until Run.
func New(opts Options) (*Watcher, error) {
	if opts.Dir == "" {
		return nil, errors.Errorf("dir is required")
	}
	if opts.Trigger == nil {
		return nil, errors.Errorf("trigger is required")
	}
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, errors.Errorf("invalid pattern %q", opts.Pattern)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", opts.Dir, err)
	}
	opts.Dir = dir

	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}
	opts.Ignore = ignore

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		opts:    opts,
		fsw:     fsw,
		pending: make(map[string]struct{}),
		fire:    make(chan struct{}, 1),
	}, nil
}

// Passes returns how many passes have finished.
func (w *Watcher) Passes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.passes
}

// LastError returns the error of the most recent pass, if any.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// ▶️ Run watches until ctx is cancelled. Trigger errors are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("dir", w.opts.Dir).Logger()
	ctx = logger.WithContext(ctx)

	defer w.stopTimer()

	if err := w.add(w.opts.Dir); err != nil {
		w.fsw.Close()
		return err
	}

	logger.Info().Bool("recursive", w.opts.Recursive).Dur("debounce", w.opts.Debounce).Msg("watching")

	if w.opts.RunOnStart {
		w.signal()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer w.fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return nil
				}
				w.handle(ctx, ev)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return nil
				}
				logger.Warn().Err(err).Msg("watch error")
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-w.fire:
				w.pass(ctx)
			}
		}
	})

	err := g.Wait()
	logger.Info().Msg("stopped watching")
	return err
}

func (w *Watcher) add(dir string) error {
	if !w.opts.Recursive {
		if err := w.fsw.Add(dir); err != nil {
			return errors.Errorf("watching %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Errorf("walking %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	for _, p := range w.opts.Ignore {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return
	}
	if w.ignored(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) && w.opts.Recursive {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.add(ev.Name); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("watching new directory")
			}
			w.schedule(ev.Name)
			return
		}
	}

	if w.opts.Pattern != "" {
		if ok, _ := doublestar.Match(w.opts.Pattern, filepath.Base(ev.Name)); !ok {
			return
		}
	}

	zerolog.Ctx(ctx).Debug().Str("path", ev.Name).Stringer("op", ev.Op).Msg("change")
	w.schedule(ev.Name)
}

// schedule records path and restarts the quiet-period timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.signal)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// signal requests a pass; requests made while one is queued collapse.
func (w *Watcher) signal() {
	select {
	case w.fire <- struct{}{}:
	default:
	}
}

func (w *Watcher) pass(ctx context.Context) {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(changed)

	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("changed", len(changed)).Msg("starting pass")

	err := w.opts.Trigger(ctx, changed)
	if err != nil {
		logger.Error().Err(err).Msg("pass failed")
	}

	w.mu.Lock()
	w.passes++
	w.lastErr = err
	w.mu.Unlock()
}
