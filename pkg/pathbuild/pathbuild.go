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

// Package pathbuild computes destination paths. Nothing here touches the
// filesystem.
package pathbuild

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/walteh/organizr/pkg/datefmt"
	"github.com/walteh/organizr/pkg/task"
)

// 📍 Destination is where a file should land.
type Destination struct {
	Dir  string // directory expanded from the date pattern
	Name string // final file name after case rules
}

// Path returns the fully qualified destination file path.
func (d Destination) Path() string {
	return filepath.Join(d.Dir, d.Name)
}

// 🏗️ Build expands pattern for date below root and applies the case rules
// to originalName.
func Build(root string, pattern *datefmt.Pattern, date time.Time, baseCase, extCase task.NameCase, originalName string) Destination {
	return Destination{
		Dir:  filepath.Join(root, filepath.FromSlash(pattern.Format(date))),
		Name: FileName(originalName, baseCase, extCase),
	}
}

// SplitName splits a base name at its last dot. A leading dot belongs to
// the extension, so ".hidden" has an empty base.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// FileName applies the case rules to each half of name and joins them back.
// A name without any dot is kept verbatim whatever the case rules say.
func FileName(name string, baseCase, extCase task.NameCase) string {
	if !strings.Contains(name, ".") {
		return name
	}

	base, ext := SplitName(name)
	base = baseCase.Apply(base)
	ext = extCase.Apply(ext)

	switch {
	case base == "":
		return "." + ext
	case ext == "":
		return base
	default:
		return base + "." + ext
	}
}
