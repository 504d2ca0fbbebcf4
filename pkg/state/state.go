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


package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// FileName is the lock file kept next to the task definitions.
const FileName = ".organizr.lock"

const schemaVersion = "1.0.0"

// 🔒 State is the persisted run history of tasks. All methods are safe for
// concurrent use; writes are serialized.
type State struct {
	mu   sync.RWMutex // protects file and serializes saves
	file *LockFile    // current state data
	path string       // path to .organizr.lock
}

// 📄 LockFile is the on-disk format.
type LockFile struct {
	SchemaVersion string               `json:"schema_version"`
	LastUpdated   time.Time            `json:"last_updated"`
	Tasks         map[string]TaskState `json:"tasks"`
}

// 📋 TaskState is what is remembered about one task.
type TaskState struct {
	LastRun  time.Time `json:"last_run"`
	RunCount int       `json:"run_count"`
}

// New returns an empty state stored in dir/.organizr.lock. Nothing is read
// until Load is called.
func New(dir string) (*State, error) {
	if dir == "" {
		return nil, errors.Errorf("state directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving state directory: %w", err)
	}
	return &State{
		file: newLockFile(),
		path: filepath.Join(abs, FileName),
	}, nil
}

func newLockFile() *LockFile {
	return &LockFile{SchemaVersion: schemaVersion, Tasks: map[string]TaskState{}}
}

// Path returns the lock file location.
func (s *State) Path() string {
	return s.path
}

// Load reads the lock file. A missing file yields a clean state.
func (s *State) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", s.path).Msg("loading state")

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.file = newLockFile()
		return nil
	}
	if err != nil {
		return errors.Errorf("reading state file: %w", err)
	}

	file := newLockFile()
	if err := json.Unmarshal(data, file); err != nil {
		return errors.Errorf("parsing state file: %w", err)
	}
	if file.SchemaVersion != schemaVersion {
		return errors.Errorf("unsupported state schema version %q", file.SchemaVersion)
	}
	if file.Tasks == nil {
		file.Tasks = map[string]TaskState{}
	}
	s.file = file
	return nil
}

// Save writes the lock file atomically.
func (s *State) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *State) save(ctx context.Context) error {
	logger := NewUserLogger(ctx)

	// cross-process guard; the mutex only covers this process
	lockPath := s.path + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		logger.LogLockOperation(false, lockPath, err)
		return errors.Errorf("creating lock file: %w", err)
	}
	logger.LogLockOperation(true, lockPath, nil)
	defer func() {
		lock.Close()
		os.Remove(lockPath)
		logger.LogLockOperation(false, lockPath, nil)
	}()

	s.file.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(s.file, "", "\t")
	if err != nil {
		return errors.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// LastRun returns the recorded last run of a task.
func (s *State) LastRun(taskName string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.file.Tasks[taskName]
	return ts.LastRun, ok
}

// Task returns everything recorded for a task.
func (s *State) Task(taskName string) (TaskState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.file.Tasks[taskName]
	return ts, ok
}

// TaskNames lists the recorded tasks in name order.
func (s *State) TaskNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.file.Tasks))
	for name := range s.file.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ⏱️ RecordLastRun stores at as the task's last run and persists the state.
// The in-memory update is rolled back when saving fails.
func (s *State) RecordLastRun(ctx context.Context, taskName string, at time.Time) error {
	if taskName == "" {
		return errors.Errorf("task name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.file.Tasks[taskName]
	s.file.Tasks[taskName] = TaskState{LastRun: at, RunCount: prev.RunCount + 1}

	if err := s.save(ctx); err != nil {
		if existed {
			s.file.Tasks[taskName] = prev
		} else {
			delete(s.file.Tasks, taskName)
		}
		return errors.Errorf("saving last run of %s: %w", taskName, err)
	}

	NewUserLogger(ctx).LogStateChange("recorded last run of " + taskName)
	return nil
}

// Apply copies recorded last run times onto tasks.
func (s *State) Apply(tasks []*task.Task) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range tasks {
		if ts, ok := s.file.Tasks[t.Name]; ok {
			t.LastRun = ts.LastRun
		}
	}
}
