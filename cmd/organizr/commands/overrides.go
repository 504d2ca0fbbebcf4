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


package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// 🎛️ overrides are task fields set from the command line for one invocation
type overrides struct {
	source      string
	dest        string
	pattern     string
	recursive   bool
	followLinks bool
	dateSource  string
	datePattern string
	baseCase    string
	extCase     string
	replace     bool
	dryRun      bool
	command     string
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.source, "source", "", "override the source directory")
	f.StringVar(&o.dest, "dest", "", "override the destination root")
	f.StringVar(&o.pattern, "pattern", "", "override the file name glob, e.g. '{*.jpg,*.JPG}'")
	f.BoolVarP(&o.recursive, "recursive", "r", false, "override recursive traversal")
	f.BoolVar(&o.followLinks, "follow-links", false, "override symlink following")
	f.StringVar(&o.dateSource, "date-source", "", "override the date source (exif, created, modified)")
	f.StringVar(&o.datePattern, "date-pattern", "", "override the destination date pattern, e.g. yyyy/MM")
	f.StringVar(&o.baseCase, "base-case", "", "override base name case (unchanged, lower, upper)")
	f.StringVar(&o.extCase, "ext-case", "", "override extension case (unchanged, lower, upper)")
	f.BoolVar(&o.replace, "replace", false, "override replacing existing destination files")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "report what would happen without touching any file")
	f.StringVar(&o.command, "command", "", "override the command (copy, move)")
}

// apply writes every flag the user set onto t.
func (o *overrides) apply(cmd *cobra.Command, t *task.Task) error {
	changed := cmd.Flags().Changed

	if changed("source") {
		t.SourceDir = o.source
	}
	if changed("dest") {
		t.DestDir = o.dest
	}
	if changed("pattern") {
		t.NamePattern = o.pattern
	}
	if changed("recursive") {
		t.Recursive = o.recursive
	}
	if changed("follow-links") {
		t.FollowLinks = o.followLinks
	}
	if changed("date-source") {
		ds, err := task.ParseDateSource(o.dateSource)
		if err != nil {
			return errors.Errorf("--date-source: %w", err)
		}
		t.DateSource = ds
	}
	if changed("date-pattern") {
		t.DatePattern = o.datePattern
	}
	if changed("base-case") {
		c, err := task.ParseNameCase(o.baseCase)
		if err != nil {
			return errors.Errorf("--base-case: %w", err)
		}
		t.BaseCase = c
	}
	if changed("ext-case") {
		c, err := task.ParseNameCase(o.extCase)
		if err != nil {
			return errors.Errorf("--ext-case: %w", err)
		}
		t.ExtCase = c
	}
	if changed("replace") {
		t.ReplaceExisting = o.replace
	}
	if changed("dry-run") {
		t.DryRun = o.dryRun
	}
	if changed("command") {
		c, err := task.ParseCommand(o.command)
		if err != nil {
			return errors.Errorf("--command: %w", err)
		}
		t.Command = c
	}

	return nil
}
