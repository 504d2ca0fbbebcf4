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

// Package task describes a single organizing job and validates it before a
// run is allowed to start.
package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/organizr/pkg/datefmt"
	"gitlab.com/tozd/go/errors"
)

// 📋 Task is one organizing job: where files come from, how they are dated,
// and where they end up.
type Task struct {
	Name        string
	Description string

	SourceDir   string
	DestDir     string
	NamePattern string // glob applied to base names, e.g. {*.jpg,*.JPG}
	Recursive   bool
	FollowLinks bool

	DateSource  DateSource
	DatePattern string // e.g. yyyy/MM/yyyy-MM-dd

	BaseCase NameCase
	ExtCase  NameCase

	ReplaceExisting bool
	DryRun          bool
	Command         Command

	// LastRun is maintained by the state store, never by the task file.
	LastRun time.Time
}

// String returns a one line description of the task.
func (t *Task) String() string {
	mode := ""
	if t.DryRun {
		mode = " (dry-run)"
	}
	return fmt.Sprintf("%s: %s %s -> %s [%s by %s]%s",
		t.Name, t.Command, t.SourceDir, t.DestDir, t.DatePattern, t.DateSource, mode)
}

// 🔧 Compiled is a task that passed validation, together with its compiled
// date pattern. It is a copy; later edits to the original Task do not reach
// a run that is already using it.
type Compiled struct {
	Task
	Pattern *datefmt.Pattern

	// SourceIsFile is set when SourceDir names a single regular file.
	SourceIsFile bool
}

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.Base("invalid task")

// ValidationError lists every problem found in a task.
type ValidationError struct {
	Task     string
	Problems []string
}

func (e *ValidationError) Error() string {
	name := e.Task
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid task %s: %s", name, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// 🔍 Validate checks the task and compiles its patterns. Source and
// destination are resolved to absolute paths in the returned copy.
func Validate(t *Task) (*Compiled, error) {
	if t == nil {
		return nil, errors.WithStack(&ValidationError{Problems: []string{"task is nil"}})
	}

	c := &Compiled{Task: *t}
	var problems []string

	switch t.Command {
	case CommandCopy, CommandMove:
	default:
		problems = append(problems, "command must be exactly one of copy or move")
	}

	if !t.DateSource.valid() {
		problems = append(problems, fmt.Sprintf("unknown date source %d", t.DateSource))
	}
	if !t.BaseCase.valid() {
		problems = append(problems, fmt.Sprintf("unknown base case %d", t.BaseCase))
	}
	if !t.ExtCase.valid() {
		problems = append(problems, fmt.Sprintf("unknown extension case %d", t.ExtCase))
	}

	if t.NamePattern == "" {
		problems = append(problems, "name pattern is required")
	} else if !doublestar.ValidatePattern(t.NamePattern) {
		problems = append(problems, fmt.Sprintf("name pattern %q is not a valid glob", t.NamePattern))
	}

	pattern, err := datefmt.Compile(t.DatePattern)
	if err != nil {
		problems = append(problems, fmt.Sprintf("date pattern: %v", err))
	}
	c.Pattern = pattern

	if src, err := absPath(t.SourceDir); err != nil {
		problems = append(problems, fmt.Sprintf("source: %v", err))
	} else if info, err := os.Stat(src); err != nil {
		problems = append(problems, fmt.Sprintf("source %s does not exist", src))
	} else {
		c.SourceDir = src
		c.SourceIsFile = info.Mode().IsRegular()
		if !info.IsDir() && !c.SourceIsFile {
			problems = append(problems, fmt.Sprintf("source %s is not a directory", src))
		}
	}

	if dst, err := absPath(t.DestDir); err != nil {
		problems = append(problems, fmt.Sprintf("destination: %v", err))
	} else if info, err := os.Stat(dst); err != nil {
		problems = append(problems, fmt.Sprintf("destination %s does not exist", dst))
	} else if !info.IsDir() {
		problems = append(problems, fmt.Sprintf("destination %s is not a directory", dst))
	} else {
		c.DestDir = dst
	}

	if len(problems) > 0 {
		return nil, errors.WithStack(&ValidationError{Task: t.Name, Problems: problems})
	}

	return c, nil
}

func absPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("path is required")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}
