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
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/discover"
	"github.com/walteh/organizr/pkg/pathbuild"
	"github.com/walteh/organizr/pkg/task"
	"github.com/walteh/organizr/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// ErrDestIsFile is the structural failure that aborts a run: a computed
// destination directory already exists as a regular file.
var ErrDestIsFile = errors.Base("destination is a file")

// 📅 DateResolver produces the effective date of a file.
type DateResolver interface {
	Resolve(ctx context.Context, path string, source task.DateSource) (time.Time, error)
}

// 💾 FileSystem performs the mutations of a run. *transfer.Manager is the
// production implementation.
type FileSystem interface {
	Probe(path string) (transfer.Kind, error)
	CreateDir(dir string) error
	CheckWritable(dir string) error
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) (transfer.Strategy, error)
	SameFile(a, b string) (bool, error)
}

// ⚙️ Executor turns one candidate file into one Outcome.
type Executor struct {
	task     *task.Compiled
	resolver DateResolver
	fs       FileSystem

	// planned holds what a dry run would have left behind so far, keyed by
	// clean path. Later files of the same run see it instead of the disk.
	planned map[string]transfer.Kind
}

// NewExecutor returns an executor for a validated task. One executor
// serves exactly one run.
func NewExecutor(t *task.Compiled, resolver DateResolver, fs FileSystem) *Executor {
	return &Executor{task: t, resolver: resolver, fs: fs, planned: map[string]transfer.Kind{}}
}

// Process runs the per-file state machine. It never returns an error:
// every failure becomes an Outcome. A Fatal outcome means the caller must
// stop processing further files.
func (e *Executor) Process(ctx context.Context, c discover.Candidate) Outcome {
	t := e.task
	logger := zerolog.Ctx(ctx).With().Str("file", c.Path).Logger()

	out := Outcome{
		Command: t.Command,
		DryRun:  t.DryRun,
		Source:  c.Path,
	}
	fail := func(reason string, err error) Outcome {
		out.Kind = OutcomeError
		out.Reason = reason
		out.Err = err
		logger.Debug().Err(err).Msg(reason)
		return out
	}

	// 1. effective date
	date, err := e.resolver.Resolve(ctx, c.Path, t.DateSource)
	if err != nil {
		return fail(err.Error(), err)
	}

	// 2. destination
	dest := pathbuild.Build(t.DestDir, t.Pattern, date, t.BaseCase, t.ExtCase, c.Name)
	out.Dest = dest.Path()

	// a file already sitting at its own destination is left alone
	same, err := e.fs.SameFile(c.Path, out.Dest)
	if err != nil {
		return fail("checking destination file", err)
	}
	if same {
		out.Kind = OutcomeSkippedExisting
		out.Reason = fmt.Sprintf("already at destination: %s", out.Dest)
		return out
	}

	// 3. the directory slot is taken by a plain file
	dirKind, blocker, err := e.probeDir(dest.Dir)
	if err != nil {
		return fail("checking destination directory", err)
	}
	if dirKind == transfer.KindFile {
		out.Kind = OutcomeSkippedDestIsFile
		out.Reason = fmt.Sprintf("destination is a file: %s", blocker)
		out.Err = errors.WithMessagef(ErrDestIsFile, "%s", blocker)
		return out
	}

	// 4. directories
	if dirKind == transfer.KindMissing {
		if t.DryRun {
			e.planDir(dest.Dir)
		} else if err := e.fs.CreateDir(dest.Dir); err != nil {
			return fail(fmt.Sprintf("cannot create destination directory %s", dest.Dir), err)
		}
	}

	// 5. file conflict
	fileKind, err := e.probe(out.Dest)
	if err != nil {
		return fail("checking destination file", err)
	}
	switch {
	case fileKind == transfer.KindDir:
		return fail(fmt.Sprintf("destination is a directory: %s", out.Dest), nil)
	case fileKind == transfer.KindFile && !t.ReplaceExisting:
		out.Kind = OutcomeSkippedExisting
		out.Reason = fmt.Sprintf("destination exists: %s", out.Dest)
		return out
	}

	if t.DryRun {
		e.planned[filepath.Clean(out.Dest)] = transfer.KindFile
		if t.Command == task.CommandMove {
			e.planned[filepath.Clean(c.Path)] = transfer.KindMissing
		}
		out.Kind = OutcomeTransferred
		return out
	}

	// 6. writability
	if err := e.fs.CheckWritable(dest.Dir); err != nil {
		return fail("cannot write destination", err)
	}

	// 7. transfer
	switch t.Command {
	case task.CommandMove:
		strategy, err := e.fs.Move(ctx, c.Path, out.Dest)
		if err != nil {
			return fail(err.Error(), err)
		}
		logger.Debug().Stringer("strategy", strategy).Msg("moved")
	default:
		if err := e.fs.Copy(ctx, c.Path, out.Dest); err != nil {
			return fail(err.Error(), err)
		}
	}

	out.Kind = OutcomeTransferred
	return out
}

// probeDir walks from the destination root down to dir. It returns KindFile
// and the offending path when any component exists as a plain file.
func (e *Executor) probeDir(dir string) (transfer.Kind, string, error) {
	rel, err := filepath.Rel(e.task.DestDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		kind, err := e.probe(dir)
		return kind, dir, err
	}

	cur := e.task.DestDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		kind, err := e.probe(cur)
		if err != nil {
			return transfer.KindMissing, cur, err
		}
		switch kind {
		case transfer.KindFile:
			return transfer.KindFile, cur, nil
		case transfer.KindMissing:
			return transfer.KindMissing, dir, nil
		}
	}

	return transfer.KindDir, dir, nil
}

// probe reports what sits at path, as seen by this run.
func (e *Executor) probe(path string) (transfer.Kind, error) {
	if kind, ok := e.planned[filepath.Clean(path)]; ok {
		return kind, nil
	}
	return e.fs.Probe(path)
}

// planDir records dir and its parents below the destination root as
// directories a live run would have created.
func (e *Executor) planDir(dir string) {
	root := filepath.Clean(e.task.DestDir)
	e.planned[filepath.Clean(dir)] = transfer.KindDir
	for cur := filepath.Dir(filepath.Clean(dir)); strings.HasPrefix(cur, root+string(filepath.Separator)); cur = filepath.Dir(cur) {
		e.planned[cur] = transfer.KindDir
	}
}
