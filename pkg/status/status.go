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


package status

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus is what a run did to one file
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusTransferred            // copied or moved, or would be in dry-run
	StatusSkipped                // destination already exists
	StatusBlocked                // destination directory is a file
	StatusFailed                 // date or I/O failure
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusTransferred:
		return "transferred"
	case StatusSkipped:
		return "skipped"
	case StatusBlocked:
		return "blocked"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusOf maps an outcome kind to a FileStatus.
func StatusOf(kind operation.OutcomeKind) FileStatus {
	switch kind {
	case operation.OutcomeTransferred:
		return StatusTransferred
	case operation.OutcomeSkippedExisting:
		return StatusSkipped
	case operation.OutcomeSkippedDestIsFile:
		return StatusBlocked
	case operation.OutcomeError:
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// 📄 FileInfo is the last known state of a source file
type FileInfo struct {
	Source string     `json:"source"`
	Dest   string     `json:"dest,omitempty"`
	Status FileStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
	DryRun bool       `json:"dry_run,omitempty"`
}

// 📈 Reporter tracks file status and reports progress
type Reporter interface {
	TrackFile(ctx context.Context, info FileInfo)
	GetFileInfo(ctx context.Context, source string) (FileInfo, error)
	ListFiles(ctx context.Context) []FileInfo

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context, summary operation.Summary)
}

var _ Reporter = (*Manager)(nil)

// 🔧 Manager follows the events of one or more runs
type Manager struct {
	logger    *zerolog.Logger // Logger for status updates
	formatter Formatter       // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
	summaries []operation.Summary
}

// 🏭 New creates a new status manager
func New(logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		logger:    logger,
		formatter: NewDefaultFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// 📣 Observe feeds a run event into the manager. It is an
// operation.EventHandler once bound to a context.
func (m *Manager) Observe(ctx context.Context, ev operation.Event) {
	switch ev.Kind {
	case operation.EventProgress:
		if ev.Current == 0 {
			m.StartOperation(ctx, ev.Total)
			return
		}
		m.UpdateProgress(ctx, ev.Current)
	case operation.EventLog:
		if o := ev.Outcome; o != nil {
			m.TrackFile(ctx, FileInfo{
				Source: o.Source,
				Dest:   o.Dest,
				Status: StatusOf(o.Kind),
				Reason: o.Reason,
				DryRun: o.DryRun,
			})
		}
	case operation.EventFinished, operation.EventFailed, operation.EventInterrupted:
		if ev.Summary != nil {
			m.FinishOperation(ctx, *ev.Summary)
		}
	}
}

// Handler binds Observe to ctx.
func (m *Manager) Handler(ctx context.Context) operation.EventHandler {
	return func(ev operation.Event) { m.Observe(ctx, ev) }
}

func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[info.Source] = info
	m.logger.Debug().Str("path", info.Source).Stringer("status", info.Status).Msg(m.formatter.FormatFile(info))
}

func (m *Manager) GetFileInfo(ctx context.Context, source string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[source]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", source)
	}
	return info, nil
}

// ListFiles returns every tracked file sorted by source path.
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	return files
}

// Failures returns the tracked files that failed or blocked a run.
func (m *Manager) Failures(ctx context.Context) []FileInfo {
	var out []FileInfo
	for _, info := range m.ListFiles(ctx) {
		if info.Status == StatusFailed || info.Status == StatusBlocked {
			out = append(out, info)
		}
	}
	return out
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	m.logger.Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context, summary operation.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summaries = append(m.summaries, summary)
	m.logger.Info().
		Str("task", summary.Task).
		Int("processed", summary.Processed()).
		Int("total", summary.Total).
		Msg(m.formatter.FormatSummary(summary))
}

// Progress returns the position within the current run.
func (m *Manager) Progress() (processed, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

// Summaries returns the summaries of every finished run, oldest first.
func (m *Manager) Summaries() []operation.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]operation.Summary(nil), m.summaries...)
}

// 📄 Report is the JSON document written by WriteReport.
type Report struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Runs        []RunReport `json:"runs"`
	Files       []FileInfo  `json:"files"`
}

// RunReport is one summary in a Report.
type RunReport struct {
	Task        string  `json:"task"`
	Status      string  `json:"status"`
	Interrupted bool    `json:"interrupted,omitempty"`
	DryRun      bool    `json:"dry_run,omitempty"`
	Total       int     `json:"total"`
	Transferred int     `json:"transferred"`
	Skipped     int     `json:"skipped"`
	Errors      int     `json:"errors"`
	ElapsedSec  float64 `json:"elapsed_seconds"`
}

// 💾 WriteReport writes everything observed so far to path atomically.
func (m *Manager) WriteReport(ctx context.Context, path string) error {
	report := Report{GeneratedAt: time.Now().UTC(), Files: m.ListFiles(ctx)}
	for _, s := range m.Summaries() {
		report.Runs = append(report.Runs, RunReport{
			Task:        s.Task,
			Status:      s.Status.String(),
			Interrupted: s.Interrupted,
			DryRun:      s.DryRun,
			Total:       s.Total,
			Transferred: s.Transferred,
			Skipped:     s.Skipped(),
			Errors:      s.Errors,
			ElapsedSec:  s.Elapsed.Seconds(),
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Errorf("encoding report: %w", err)
	}

	return writeFileAtomic(path, append(data, '\n'))
}

func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}

	// Write to temp file first
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
