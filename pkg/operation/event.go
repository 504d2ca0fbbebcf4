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
	"fmt"
	"time"
)

// 📣 EventKind identifies a lifecycle event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventProcessingStarted
	EventProgress
	EventLog
	EventFinished
	EventFailed
	EventInterrupted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProcessingStarted:
		return "processing_started"
	case EventProgress:
		return "progress"
	case EventLog:
		return "log"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	case EventInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no event follows this one.
func (k EventKind) Terminal() bool {
	return k == EventFinished || k == EventFailed || k == EventInterrupted
}

// Event is emitted by a Run, strictly in order.
type Event struct {
	Kind EventKind
	Task string

	// Current and Total are set on progress events.
	Current int
	Total   int

	// Message is set on log and failed events.
	Message string
	// Outcome is set on log events that report a processed file.
	Outcome *Outcome

	// Summary is set on terminal events.
	Summary *Summary
}

// RunStatus is the final state of a run.
type RunStatus int

const (
	StatusCompleted RunStatus = iota
	StatusAborted
)

func (s RunStatus) String() string {
	if s == StatusAborted {
		return "aborted"
	}
	return "completed"
}

// 📊 Summary aggregates a run.
type Summary struct {
	Task   string
	DryRun bool

	Total             int // files discovered
	Transferred       int
	SkippedExisting   int
	SkippedDestIsFile int
	Errors            int

	Elapsed time.Duration
	Status  RunStatus
	// Interrupted is set when the run was aborted by cancellation rather
	// than by a failure.
	Interrupted bool
}

// Processed is the number of files that reached an outcome.
func (s Summary) Processed() int {
	return s.Transferred + s.SkippedExisting + s.SkippedDestIsFile + s.Errors
}

// Skipped counts both kinds of skip.
func (s Summary) Skipped() int {
	return s.SkippedExisting + s.SkippedDestIsFile
}

// Failed reports whether the caller should treat the run as unsuccessful.
func (s Summary) Failed() bool {
	return (s.Status == StatusAborted && !s.Interrupted) || s.Errors > 0
}

func (s *Summary) add(o Outcome) {
	switch o.Kind {
	case OutcomeTransferred:
		s.Transferred++
	case OutcomeSkippedExisting:
		s.SkippedExisting++
	case OutcomeSkippedDestIsFile:
		s.SkippedDestIsFile++
	case OutcomeError:
		s.Errors++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d of %d processed, %d transferred, %d skipped, %d errors in %s",
		s.Status, s.Processed(), s.Total, s.Transferred, s.Skipped(), s.Errors, s.Elapsed.Round(time.Millisecond))
}
