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
	"strings"

	"github.com/walteh/organizr/pkg/task"
)

// DryRunPrefix marks every log line of a simulated run.
const DryRunPrefix = "[dry-run] "

// 🏷️ OutcomeKind classifies what happened to one file.
type OutcomeKind int

const (
	OutcomeTransferred OutcomeKind = iota
	OutcomeSkippedExisting
	OutcomeSkippedDestIsFile
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTransferred:
		return "transferred"
	case OutcomeSkippedExisting:
		return "skipped (exists)"
	case OutcomeSkippedDestIsFile:
		return "skipped (destination is a file)"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// 📝 Outcome is the result of processing one candidate file.
type Outcome struct {
	Kind    OutcomeKind
	Command task.Command
	DryRun  bool

	Source string
	// Dest is the full destination path, empty when it could not be computed.
	Dest string

	// Reason explains skips and errors.
	Reason string
	Err    error
}

// Fatal reports whether the outcome stops the whole run.
func (o Outcome) Fatal() bool {
	return o.Kind == OutcomeSkippedDestIsFile
}

// Line renders the outcome as the shell command that performs it, e.g.
//
//	cp /src/a.jpg /dst/2020/a.jpg
//	[dry-run] mv /src/b.jpg /dst/2021/b.jpg # skipped: destination exists: /dst/2021/b.jpg
func (o Outcome) Line() string {
	var b strings.Builder
	if o.DryRun {
		b.WriteString(DryRunPrefix)
	}
	b.WriteString(o.Command.Shell())
	b.WriteByte(' ')
	b.WriteString(o.Source)
	if o.Dest != "" {
		b.WriteByte(' ')
		b.WriteString(o.Dest)
	}

	switch o.Kind {
	case OutcomeSkippedExisting, OutcomeSkippedDestIsFile:
		b.WriteString(" # skipped: ")
		b.WriteString(o.Reason)
	case OutcomeError:
		b.WriteString(" # error: ")
		b.WriteString(o.Reason)
	}

	return b.String()
}
