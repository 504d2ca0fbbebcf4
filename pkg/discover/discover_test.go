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

package discover

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// 🧪 makeTree creates files (and their parent dirs) under root
func makeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
}

func names(root string, cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		rel, _ := filepath.Rel(root, c.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		pattern   string
		recursive bool
		want      []string
	}{
		{
			name:    "brace_alternation",
			files:   []string{"b.JPG", "a.jpg", "c.txt", "d.jpeg"},
			pattern: "{*.jpg,*.JPG}",
			want:    []string{"a.jpg", "b.JPG"},
		},
		{
			name:    "case_sensitive",
			files:   []string{"a.jpg", "b.JPG"},
			pattern: "*.jpg",
			want:    []string{"a.jpg"},
		},
		{
			name:    "non_recursive_skips_children",
			files:   []string{"top.jpg", "sub/deep.jpg"},
			pattern: "*",
			want:    []string{"top.jpg"},
		},
		{
			name:      "recursive_sorted_by_full_path",
			files:     []string{"z.jpg", "sub/b.jpg", "sub/a.jpg", "a/z.jpg", "sub/deeper/c.jpg"},
			pattern:   "*.jpg",
			recursive: true,
			want:      []string{"a/z.jpg", "sub/a.jpg", "sub/b.jpg", "sub/deeper/c.jpg", "z.jpg"},
		},
		{
			name:      "pattern_matches_base_name_only",
			files:     []string{"photos/x.txt", "x.jpg"},
			pattern:   "photos*",
			recursive: true,
			want:      []string{},
		},
		{
			name:    "empty_directory",
			pattern: "*",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			root := t.TempDir()
			makeTree(t, root, tt.files...)

			got, err := Discover(ctx, Options{Root: root, Pattern: tt.pattern, Recursive: tt.recursive})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(root, got))
		})
	}
}

func TestDiscoverCandidateFields(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	makeTree(t, root, "Photo.JPG", ".hidden")

	got, err := Discover(ctx, Options{Root: root, Pattern: "*"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, ".hidden", got[0].Name)
	assert.Equal(t, "hidden", got[0].Ext)
	assert.Equal(t, "Photo.JPG", got[1].Name)
	assert.Equal(t, "JPG", got[1].Ext)
	assert.True(t, filepath.IsAbs(got[1].Path))
}

func TestDiscoverSingleFile(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	makeTree(t, root, "a.jpg", "b.jpg")
	file := filepath.Join(root, "a.jpg")

	got, err := Discover(ctx, Options{Root: file, Pattern: "*.jpg", Recursive: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, file, got[0].Path)

	got, err = Discover(ctx, Options{Root: file, Pattern: "*.png"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscoverSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links need privileges on windows")
	}

	ctx := testContext(t)
	root := t.TempDir()
	outside := t.TempDir()
	makeTree(t, root, "real/a.jpg")
	makeTree(t, outside, "linked.jpg")

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "linked.jpg"), filepath.Join(root, "file-link.jpg")))
	// loop back to the root
	require.NoError(t, os.Symlink(root, filepath.Join(root, "real", "loop")))

	t.Run("not_followed", func(t *testing.T) {
		got, err := Discover(ctx, Options{Root: root, Pattern: "*.jpg", Recursive: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"real/a.jpg"}, names(root, got))
	})

	t.Run("followed", func(t *testing.T) {
		got, err := Discover(ctx, Options{Root: root, Pattern: "*.jpg", Recursive: true, FollowLinks: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"file-link.jpg", "linkdir/linked.jpg", "real/a.jpg"}, names(root, got))
	})
}

func TestDiscoverUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	ctx := testContext(t)
	root := t.TempDir()
	makeTree(t, root, "ok/a.jpg", "locked/b.jpg")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	got, err := Discover(ctx, Options{Root: root, Pattern: "*.jpg", Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/a.jpg"}, names(root, got))
}

func TestDiscoverInterrupted(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.jpg", "sub/b.jpg")

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	got, err := Discover(ctx, Options{Root: root, Pattern: "*", Recursive: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.Nil(t, got, "an interrupted walk returns no partial list")
}

func TestDiscoverErrors(t *testing.T) {
	ctx := testContext(t)

	_, err := Discover(ctx, Options{Root: t.TempDir(), Pattern: "{*.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid name pattern")

	_, err = Discover(ctx, Options{Root: filepath.Join(t.TempDir(), "missing"), Pattern: "*"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading root")
}
