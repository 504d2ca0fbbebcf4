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


package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/organizr/cmd/organizr/opts"
	"github.com/walteh/organizr/pkg/state"
	"github.com/walteh/organizr/pkg/testutils"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand(&opts.RootOpts{})
	require.NotNil(t, cmd, "command should not be nil")
	assert.Equal(t, "organizr", cmd.Use, "command name should match")
	assert.NotEmpty(t, cmd.Short, "should have short description")

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "list", "watch", "version"})
}

func TestVersionNeedsNoConfig(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := NewCommand(&opts.RootOpts{})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), "🚀 organizr version info:"))
	assert.Contains(t, out.String(), "Go:")
}

func TestRunWithConfigFlag(t *testing.T) {
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	library := filepath.Join(root, "library")
	require.NoError(t, os.MkdirAll(library, 0o755))
	testutils.WriteFile(t, inbox, "a.jpg", testutils.ExifJPEG(testutils.DateTimeOriginal("2019:12:31 23:59:59")))

	path := filepath.Join(root, "organizr.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
task "photos" {
  source       = "${config_dir}/inbox"
  destination  = "library"
  pattern      = "*.jpg"
  date_pattern = "yyyy/yyyy-MM-dd"
  command      = "move"
}
`), 0o644))

	rootOpts := &opts.RootOpts{}
	cmd := NewCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "run", "photos"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.FileExists(t, filepath.Join(library, "2019", "2019-12-31", "a.jpg"))
	assert.NoFileExists(t, filepath.Join(inbox, "a.jpg"), "move removes the source")
	assert.FileExists(t, filepath.Join(root, state.FileName), "state is kept next to the task file")
	require.NotNil(t, rootOpts.Config)
	assert.Equal(t, path, rootOpts.Config.Location())
}

func TestMissingTaskFile(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := NewCommand(&opts.RootOpts{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task file found")
}

func TestFormatVersion(t *testing.T) {
	got := FormatVersion(&VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true, GoVersion: "go1.23", Platform: "linux/amd64"})
	assert.Contains(t, got, "Version:   v1.2.3")
	assert.Contains(t, got, "Revision:  abc (modified)")
	assert.Contains(t, got, "Platform:  linux/amd64")
}
