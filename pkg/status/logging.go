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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/organizr/pkg/operation"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	typeWidth   = 15 // Width for file type
	statusWidth = 15 // Width for status text
)

// 🎯 FormatFileLine formats a tracked file as an aligned, colored line
func FormatFileLine(info FileInfo) string {
	var prefix string
	switch info.Status {
	case StatusTransferred:
		prefix = color.GreenString("✓")
	case StatusSkipped:
		prefix = color.HiBlackString("-")
	case StatusBlocked:
		prefix = color.YellowString("!")
	case StatusFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("?")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Source)), ".")
	if ext == "" {
		ext = "-"
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, filepath.Base(info.Source))
	typePart := fmt.Sprintf("%-*s", typeWidth, ext)
	statusPart := fmt.Sprintf("%-*s", statusWidth, info.Status.String())

	indent := strings.Repeat(" ", fileIndent)
	if info.DryRun {
		indent += operation.DryRunPrefix
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		indent,
		prefix,
		namePart,
		typePart,
		statusPart,
	)

	switch {
	case info.Status == StatusTransferred && info.Dest != "":
		line += color.HiBlackString("→ %s", info.Dest)
	case info.Reason != "":
		line += color.HiBlackString("%s", info.Reason)
	}

	return strings.TrimRight(line, " ")
}
