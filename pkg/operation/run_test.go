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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/organizr/pkg/resolve"
	"github.com/walteh/organizr/pkg/task"
	"github.com/walteh/organizr/pkg/testutils"
	"github.com/walteh/organizr/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockStore is a mock implementation of LastRunStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RecordLastRun(ctx context.Context, taskName string, at time.Time) error {
	return m.Called(ctx, taskName, at).Error(0)
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

type fixture struct {
	src string
	dst string
}

func newFixture(t *testing.T) fixture {
	return fixture{src: t.TempDir(), dst: t.TempDir()}
}

func (f fixture) photo(t *testing.T, name, date string) string {
	return testutils.WriteFile(t, f.src, name, testutils.ExifJPEG(testutils.DateTimeOriginal(date)))
}

func (f fixture) task() *task.Task {
	return &task.Task{
		Name:        "photos",
		SourceDir:   f.src,
		DestDir:     f.dst,
		NamePattern: "{*.jpg,*.JPG}",
		Recursive:   true,
		DateSource:  task.DateExifOriginal,
		DatePattern: "yyyy/MM/yyyy-MM-dd",
		Command:     task.CommandCopy,
	}
}

type result struct {
	events  []Event
	summary Summary
	err     error
}

func (r result) kinds() []EventKind {
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r result) outcomes() []Outcome {
	var out []Outcome
	for _, ev := range r.events {
		if ev.Outcome != nil {
			out = append(out, *ev.Outcome)
		}
	}
	return out
}

func (r result) lines() []string {
	var out []string
	for _, ev := range r.events {
		if ev.Kind == EventLog {
			out = append(out, ev.Message)
		}
	}
	return out
}

func execute(t *testing.T, ctx context.Context, run *Run) result {
	t.Helper()
	events, err := run.Start(ctx)
	require.NoError(t, err, "starting run")

	var res result
	for ev := range events {
		res.events = append(res.events, ev)
	}
	res.summary, res.err = run.Wait()
	return res
}

func runTask(t *testing.T, opts Options) result {
	t.Helper()
	run, err := New(opts)
	require.NoError(t, err)
	return execute(t, testContext(t), run)
}

// snapshot records every path below root with its content and mtime
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		rel, _ := filepath.Rel(root, path)
		info, err := d.Info()
		require.NoError(t, err)
		if d.IsDir() {
			out[rel] = "dir"
			return nil
		}
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		out[rel] = string(content) + "@" + info.ModTime().String()
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestEndToEndCopy(t *testing.T) {
	f := newFixture(t)
	src := f.photo(t, "a.jpg", "2020:06:01 12:34:56")
	other := testutils.WriteFile(t, f.src, "b.txt", []byte("notes"))

	store := &MockStore{}
	store.On("RecordLastRun", mock.Anything, "photos", mock.AnythingOfType("time.Time")).Return(nil).Once()

	res := runTask(t, Options{Task: f.task(), Store: store})
	require.NoError(t, res.err)

	assert.Equal(t, []EventKind{
		EventStarted,
		EventProcessingStarted,
		EventProgress,
		EventLog,
		EventProgress,
		EventFinished,
	}, res.kinds())

	dest := filepath.Join(f.dst, "2020", "06", "2020-06-01", "a.jpg")
	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err, "destination file should exist")
	assert.Equal(t, want, got, "content should be identical")

	_, err = os.Stat(src)
	assert.NoError(t, err, "source should still exist after copy")
	content, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "notes", string(content), "excluded file is untouched")

	assert.Equal(t, []string{"cp " + src + " " + dest}, res.lines())

	s := res.summary
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Transferred)
	assert.Equal(t, 0, s.Skipped())
	assert.Equal(t, 0, s.Errors)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.False(t, s.Failed())

	last := res.events[len(res.events)-1]
	require.NotNil(t, last.Summary)
	assert.Equal(t, s, *last.Summary)

	store.AssertExpectations(t)
}

func TestDryRunDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")
	f.photo(t, "sub/b.JPG", "2021:01:02 03:04:05")
	f.photo(t, "sub/c.jpg", "2021:01:02 03:04:05")
	testutils.WriteFile(t, f.src, "broken.jpg", testutils.PlainJPEG())
	// c.jpg already has a copy at its destination
	testutils.WriteFile(t, f.dst, "2021/01/2021-01-02/c.jpg", []byte("existing"))

	before := map[string]map[string]string{"src": snapshot(t, f.src), "dst": snapshot(t, f.dst)}

	store := &MockStore{}
	dry := f.task()
	dry.DryRun = true
	dryRes := runTask(t, Options{Task: dry, Store: store})
	require.NoError(t, dryRes.err)

	assert.Equal(t, before["src"], snapshot(t, f.src), "source tree must not change")
	assert.Equal(t, before["dst"], snapshot(t, f.dst), "destination tree must not change")
	store.AssertNotCalled(t, "RecordLastRun", mock.Anything, mock.Anything, mock.Anything)

	for _, line := range dryRes.lines() {
		assert.True(t, strings.HasPrefix(line, DryRunPrefix), "line %q lacks the dry-run marker", line)
	}

	liveRes := runTask(t, Options{Task: f.task()})
	require.NoError(t, liveRes.err)

	var stripped []string
	for _, line := range dryRes.lines() {
		stripped = append(stripped, strings.TrimPrefix(line, DryRunPrefix))
	}
	assert.Equal(t, liveRes.lines(), stripped, "dry-run previews the live run")

	dryOutcomes, liveOutcomes := dryRes.outcomes(), liveRes.outcomes()
	require.Len(t, dryOutcomes, len(liveOutcomes))
	for i := range liveOutcomes {
		assert.Equal(t, liveOutcomes[i].Kind, dryOutcomes[i].Kind, "outcome %d", i)
	}

	assert.True(t, dryRes.summary.DryRun)
	assert.Equal(t, 2, dryRes.summary.Transferred)
	assert.Equal(t, 1, dryRes.summary.SkippedExisting)
	assert.Equal(t, 1, dryRes.summary.Errors)
}

func TestDryRunMatchesLiveOnCollisions(t *testing.T) {
	for _, replace := range []bool{false, true} {
		name := "keep_existing"
		if replace {
			name = "replace_existing"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.photo(t, "a/x.jpg", "2020:06:01 12:34:56")
			f.photo(t, "b/x.jpg", "2020:06:01 08:00:00")

			dry := f.task()
			dry.DryRun = true
			dry.ReplaceExisting = replace
			dryRes := runTask(t, Options{Task: dry})
			require.NoError(t, dryRes.err)

			live := f.task()
			live.ReplaceExisting = replace
			liveRes := runTask(t, Options{Task: live})
			require.NoError(t, liveRes.err)

			kinds := func(r result) []OutcomeKind {
				var out []OutcomeKind
				for _, o := range r.outcomes() {
					out = append(out, o.Kind)
				}
				return out
			}

			want := []OutcomeKind{OutcomeTransferred, OutcomeSkippedExisting}
			if replace {
				want = []OutcomeKind{OutcomeTransferred, OutcomeTransferred}
			}
			assert.Equal(t, want, kinds(liveRes))
			assert.Equal(t, kinds(liveRes), kinds(dryRes))
			assert.Equal(t, liveRes.summary.Transferred, dryRes.summary.Transferred)
			assert.Equal(t, liveRes.summary.SkippedExisting, dryRes.summary.SkippedExisting)
		})
	}
}

func TestMoveInPlaceKeepsFile(t *testing.T) {
	for _, replace := range []bool{false, true} {
		name := "keep_existing"
		if replace {
			name = "replace_existing"
		}
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			f := fixture{src: root, dst: root}
			path := f.photo(t, "2020/06/2020-06-01/a.jpg", "2020:06:01 12:34:56")
			want, err := os.ReadFile(path)
			require.NoError(t, err)

			tsk := f.task()
			tsk.Command = task.CommandMove
			tsk.ReplaceExisting = replace
			res := runTask(t, Options{Task: tsk})
			require.NoError(t, res.err)

			outcomes := res.outcomes()
			require.Len(t, outcomes, 1)
			assert.Equal(t, OutcomeSkippedExisting, outcomes[0].Kind)
			assert.Equal(t, path, outcomes[0].Dest)
			assert.Contains(t, outcomes[0].Reason, "already at destination")
			assert.Equal(t, 0, res.summary.Transferred)

			got, err := os.ReadFile(path)
			require.NoError(t, err, "the only copy must survive")
			assert.Equal(t, want, got)
		})
	}
}

func TestOutcomesFollowPathOrder(t *testing.T) {
	f := newFixture(t)
	// created in reverse so directory order cannot hide a missing sort
	names := []string{"z/9.jpg", "m/5.jpg", "m/1.jpg", "b.jpg", "a/a.jpg"}
	for _, n := range names {
		f.photo(t, n, "2020:06:01 12:34:56")
	}

	tsk := f.task()
	tsk.DatePattern = "yyyy"
	tsk.DryRun = true
	res := runTask(t, Options{Task: tsk})
	require.NoError(t, res.err)

	var got []string
	for _, o := range res.outcomes() {
		rel, err := filepath.Rel(f.src, o.Source)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a/a.jpg", "b.jpg", "m/1.jpg", "m/5.jpg", "z/9.jpg"}, got)

	var progress []int
	for _, ev := range res.events {
		if ev.Kind == EventProgress {
			progress = append(progress, ev.Current)
			assert.Equal(t, 5, ev.Total)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, progress)
}

func TestConflictPolicy(t *testing.T) {
	tests := []struct {
		name        string
		replace     bool
		wantKind    OutcomeKind
		wantContent string
	}{
		{name: "keep_existing", replace: false, wantKind: OutcomeSkippedExisting, wantContent: "old"},
		{name: "replace_existing", replace: true, wantKind: OutcomeTransferred, wantContent: "new"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			src := testutils.WriteFile(t, f.src, "a.txt", []byte("new"))
			mtime := time.Date(2020, time.June, 15, 12, 0, 0, 0, time.UTC)
			require.NoError(t, os.Chtimes(src, mtime, mtime))
			dest := testutils.WriteFile(t, f.dst, "2020/a.txt", []byte("old"))

			tsk := f.task()
			tsk.NamePattern = "*.txt"
			tsk.DateSource = task.DateFileModified
			tsk.DatePattern = "yyyy"
			tsk.ReplaceExisting = tt.replace

			res := runTask(t, Options{Task: tsk})
			require.NoError(t, res.err)

			outcomes := res.outcomes()
			require.Len(t, outcomes, 1)
			assert.Equal(t, tt.wantKind, outcomes[0].Kind)
			if tt.wantKind == OutcomeSkippedExisting {
				assert.Contains(t, outcomes[0].Line(), dest, "skip message names the conflicting path")
			}

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(got))

			_, err = os.Stat(src)
			assert.NoError(t, err, "copy never touches the source")
		})
	}
}

func TestMoveAcrossVolumes(t *testing.T) {
	for _, sameVolume := range []bool{true, false} {
		name := "other_volume"
		if sameVolume {
			name = "same_volume"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			src := f.photo(t, "a.jpg", "2020:06:01 12:34:56")
			want, err := os.ReadFile(src)
			require.NoError(t, err)

			mgr := transfer.NewManager()
			mgr.SameVolume = func(a, b string) (bool, error) { return sameVolume, nil }

			tsk := f.task()
			tsk.Command = task.CommandMove
			res := runTask(t, Options{Task: tsk, FileSystem: mgr})
			require.NoError(t, res.err)
			assert.Equal(t, 1, res.summary.Transferred)

			_, err = os.Stat(src)
			assert.True(t, os.IsNotExist(err), "source should be gone")

			got, err := os.ReadFile(filepath.Join(f.dst, "2020", "06", "2020-06-01", "a.jpg"))
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.Len(t, res.lines(), 1)
			assert.True(t, strings.HasPrefix(res.lines()[0], "mv "))
		})
	}
}

func TestExifFailuresDoNotStopRun(t *testing.T) {
	f := newFixture(t)
	testutils.WriteFile(t, f.src, "a_plain.jpg", testutils.PlainJPEG())
	testutils.WriteFile(t, f.src, "b_wrong_type.jpg", testutils.ExifJPEG(testutils.Short(testutils.TagDateTimeOriginal, 7)))
	f.photo(t, "c_ok.jpg", "2020:06:01 12:34:56")

	res := runTask(t, Options{Task: f.task()})
	require.NoError(t, res.err)

	outcomes := res.outcomes()
	require.Len(t, outcomes, 3)

	assert.Equal(t, OutcomeError, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Line(), "not found")
	assert.True(t, errors.Is(outcomes[0].Err, resolve.ErrExifNotFound))

	assert.Equal(t, OutcomeError, outcomes[1].Kind)
	assert.Contains(t, outcomes[1].Line(), "not supported")
	assert.True(t, errors.Is(outcomes[1].Err, resolve.ErrFormatNotSupported))

	assert.Equal(t, OutcomeTransferred, outcomes[2].Kind)

	assert.Equal(t, StatusCompleted, res.summary.Status)
	assert.Equal(t, 2, res.summary.Errors)
	assert.True(t, res.summary.Failed(), "per-file errors mark the run as failed for exit codes")
}

func TestDestinationIsFileAbortsRun(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")
	f.photo(t, "b.jpg", "2020:06:01 12:34:56")
	testutils.WriteFile(t, f.dst, "2020", []byte("in the way"))

	store := &MockStore{}
	res := runTask(t, Options{Task: f.task(), Store: store})

	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, ErrDestIsFile))

	assert.Equal(t, []EventKind{
		EventStarted,
		EventProcessingStarted,
		EventProgress,
		EventLog,
		EventFailed,
	}, res.kinds())

	outcomes := res.outcomes()
	require.Len(t, outcomes, 1, "processing stops at the first file")
	assert.Equal(t, OutcomeSkippedDestIsFile, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Line(), filepath.Join(f.dst, "2020"))

	assert.Equal(t, StatusAborted, res.summary.Status)
	assert.False(t, res.summary.Interrupted)
	assert.Equal(t, 2, res.summary.Total)
	assert.Equal(t, 1, res.summary.SkippedDestIsFile)
	store.AssertNotCalled(t, "RecordLastRun", mock.Anything, mock.Anything, mock.Anything)
}

// cancelingResolver cancels the run while the first file is in flight
type cancelingResolver struct {
	DateResolver
	once   sync.Once
	cancel func()
}

func (c *cancelingResolver) Resolve(ctx context.Context, path string, source task.DateSource) (time.Time, error) {
	c.once.Do(c.cancel)
	return c.DateResolver.Resolve(ctx, path, source)
}

func TestCancelFinishesCurrentFile(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")
	f.photo(t, "b.jpg", "2020:06:01 12:34:56")

	res := &cancelingResolver{DateResolver: resolve.New()}
	store := &MockStore{}
	run, err := New(Options{Task: f.task(), Resolver: res, Store: store})
	require.NoError(t, err)
	res.cancel = run.Cancel

	out := execute(t, testContext(t), run)
	require.NoError(t, out.err, "cancellation is not an error")

	assert.Equal(t, []EventKind{
		EventStarted,
		EventProcessingStarted,
		EventProgress,
		EventLog,
		EventProgress,
		EventInterrupted,
	}, out.kinds())

	assert.Equal(t, StateAborted, run.State())
	assert.Equal(t, StatusAborted, out.summary.Status)
	assert.True(t, out.summary.Interrupted)
	assert.Equal(t, 1, out.summary.Transferred, "in-flight file is finished")
	assert.Equal(t, 2, out.summary.Total)
	assert.False(t, out.summary.Failed())

	_, err = os.Stat(filepath.Join(f.dst, "2020", "06", "2020-06-01", "b.jpg"))
	assert.True(t, os.IsNotExist(err))
	store.AssertNotCalled(t, "RecordLastRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBeforeStart(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")

	run, err := New(Options{Task: f.task()})
	require.NoError(t, err)
	run.Cancel()

	res := execute(t, testContext(t), run)
	require.NoError(t, res.err)
	assert.Equal(t, EventInterrupted, res.kinds()[len(res.events)-1])
	assert.Equal(t, 0, res.summary.Transferred)
}

func TestParentContextCancelInterrupts(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	run, err := New(Options{Task: f.task()})
	require.NoError(t, err)
	res := execute(t, ctx, run)
	require.NoError(t, res.err)
	assert.Equal(t, []EventKind{EventStarted, EventProcessingStarted, EventInterrupted}, res.kinds())
}

func TestEmptyFileList(t *testing.T) {
	f := newFixture(t)
	testutils.WriteFile(t, f.src, "notes.txt", []byte("x"))

	res := runTask(t, Options{Task: f.task()})
	require.NoError(t, res.err)

	assert.Equal(t, []EventKind{
		EventStarted,
		EventProcessingStarted,
		EventProgress,
		EventLog,
		EventFinished,
	}, res.kinds())
	assert.Equal(t, []string{EmptyListMessage}, res.lines())
	assert.Equal(t, 0, res.summary.Total)
	assert.Equal(t, StatusCompleted, res.summary.Status)
}

func TestStartValidation(t *testing.T) {
	f := newFixture(t)
	tsk := f.task()
	tsk.NamePattern = "{*.jpg"
	tsk.DestDir = filepath.Join(f.dst, "missing")

	run, err := New(Options{Task: tsk})
	require.NoError(t, err)

	events, err := run.Start(testContext(t))
	require.Error(t, err)
	assert.Nil(t, events)
	assert.Equal(t, StateIdle, run.State(), "an invalid task never starts running")

	var verr *task.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 2)

	_, err = run.Wait()
	assert.Error(t, err)
}

func TestStartTwice(t *testing.T) {
	f := newFixture(t)
	run, err := New(Options{Task: f.task()})
	require.NoError(t, err)

	events, err := run.Start(testContext(t))
	require.NoError(t, err)
	for range events {
	}

	_, err = run.Start(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestNewRequiresTask(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task is required")
}

func TestLastRunRecorded(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	store := &MockStore{}
	store.On("RecordLastRun", mock.Anything, "photos", now).Return(errors.New("disk full")).Once()

	run, err := New(Options{Task: f.task(), Store: store, Clock: func() time.Time { return now }})
	require.NoError(t, err)
	res := execute(t, testContext(t), run)

	require.NoError(t, res.err, "a store failure does not fail the run")
	assert.Contains(t, res.lines(), "recording last run: disk full")
	assert.Equal(t, now, run.Task().LastRun)
	store.AssertExpectations(t)
}

func TestRunnerForwardsEvents(t *testing.T) {
	f := newFixture(t)
	f.photo(t, "a.jpg", "2020:06:01 12:34:56")

	var kinds []EventKind
	logger := zerolog.New(zerolog.NewTestWriter(t))
	runner := NewRunner(&logger, func(ev Event) { kinds = append(kinds, ev.Kind) })

	summary, err := runner.Run(context.Background(), Options{Task: f.task()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Transferred)
	assert.Equal(t, EventStarted, kinds[0])
	assert.Equal(t, EventFinished, kinds[len(kinds)-1])

	_, err = runner.Run(context.Background(), Options{Task: &task.Task{Name: "broken"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, task.ErrInvalid))
}
