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

// Package discover walks a source tree and returns the files a task should
// organize, sorted by path.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/pathbuild"
	"gitlab.com/tozd/go/errors"
)

// ErrInterrupted is returned when the context is cancelled mid-walk. No
// partial list is returned with it.
var ErrInterrupted = errors.Base("discovery interrupted")

// 📄 Candidate is a discovered source file.
type Candidate struct {
	Path string // absolute path
	Name string // base name
	Ext  string // extension without the dot, may be empty
}

func newCandidate(path string) Candidate {
	name := filepath.Base(path)
	_, ext := pathbuild.SplitName(name)
	return Candidate{Path: path, Name: name, Ext: ext}
}

// 🔧 Options controls a walk.
type Options struct {
	Root        string // directory to walk, or a single regular file
	Pattern     string // glob matched against base names
	Recursive   bool
	FollowLinks bool // traverse symlinked directories and include symlinked files
}

// 🔍 Discover walks opts.Root and returns matching regular files sorted by
// full path. Unreadable directories and dangling links are skipped.
func Discover(ctx context.Context, opts Options) ([]Candidate, error) {
	logger := zerolog.Ctx(ctx)

	if !doublestar.ValidatePattern(opts.Pattern) {
		return nil, errors.Errorf("invalid name pattern %q", opts.Pattern)
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("reading root: %w", err)
	}

	if info.Mode().IsRegular() {
		if !match(opts.Pattern, info.Name()) {
			logger.Debug().Str("file", root).Str("pattern", opts.Pattern).Msg("single source file does not match pattern")
			return nil, nil
		}
		return []Candidate{newCandidate(root)}, nil
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is neither a file nor a directory", root)
	}

	w := &walker{
		opts:    opts,
		logger:  logger,
		visited: map[string]struct{}{},
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		w.visited[real] = struct{}{}
	}

	if err := w.walkDir(ctx, root); err != nil {
		return nil, err
	}

	sort.Slice(w.found, func(i, j int) bool {
		return w.found[i].Path < w.found[j].Path
	})

	logger.Debug().Str("root", root).Int("files", len(w.found)).Msg("discovery complete")
	return w.found, nil
}

type walker struct {
	opts    Options
	logger  *zerolog.Logger
	visited map[string]struct{}
	found   []Candidate
}

func interrupted(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.WithStack(ErrInterrupted)
	}
	return nil
}

func (w *walker) walkDir(ctx context.Context, dir string) error {
	if err := interrupted(ctx); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		if len(entries) == 0 {
			return nil
		}
	}

	for _, entry := range entries {
		if err := interrupted(ctx); err != nil {
			return err
		}

		full := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		if mode&fs.ModeSymlink != 0 {
			if err := w.visitLink(ctx, full); err != nil {
				return err
			}
			continue
		}

		switch {
		case mode.IsDir():
			if w.opts.Recursive {
				if err := w.walkDir(ctx, full); err != nil {
					return err
				}
			}
		case mode.IsRegular():
			w.add(full, entry.Name())
		}
	}

	return nil
}

func (w *walker) visitLink(ctx context.Context, full string) error {
	if !w.opts.FollowLinks {
		w.logger.Debug().Str("path", full).Msg("not following symbolic link")
		return nil
	}

	info, err := os.Stat(full)
	if err != nil {
		w.logger.Debug().Err(err).Str("path", full).Msg("skipping dangling symbolic link")
		return nil
	}

	if info.Mode().IsRegular() {
		w.add(full, filepath.Base(full))
		return nil
	}
	if !info.IsDir() || !w.opts.Recursive {
		return nil
	}

	real, err := filepath.EvalSymlinks(full)
	if err != nil {
		w.logger.Debug().Err(err).Str("path", full).Msg("skipping unresolvable symbolic link")
		return nil
	}
	if _, seen := w.visited[real]; seen {
		w.logger.Debug().Str("path", full).Str("target", real).Msg("skipping symbolic link loop")
		return nil
	}
	w.visited[real] = struct{}{}

	return w.walkDir(ctx, full)
}

func (w *walker) add(path, name string) {
	if !match(w.opts.Pattern, name) {
		return
	}
	w.found = append(w.found, newCandidate(path))
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
