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

package task

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🚚 Command selects what happens to a source file.
type Command int

const (
	CommandUnset Command = iota
	CommandCopy
	CommandMove
)

func (c Command) String() string {
	switch c {
	case CommandCopy:
		return "copy"
	case CommandMove:
		return "move"
	default:
		return "unset"
	}
}

// Shell returns the shell verb used in log lines.
func (c Command) Shell() string {
	switch c {
	case CommandMove:
		return "mv"
	default:
		return "cp"
	}
}

// ParseCommand accepts "copy"/"cp" and "move"/"mv".
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy", "cp":
		return CommandCopy, nil
	case "move", "mv":
		return CommandMove, nil
	default:
		return CommandUnset, errors.Errorf("unknown command %q (want copy or move)", s)
	}
}

func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Command) UnmarshalText(b []byte) error {
	v, err := ParseCommand(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// 📅 DateSource selects where a file's effective date comes from.
type DateSource int

const (
	DateExifOriginal DateSource = iota
	DateFileCreated
	DateFileModified
)

func (d DateSource) String() string {
	switch d {
	case DateExifOriginal:
		return "exif"
	case DateFileCreated:
		return "created"
	case DateFileModified:
		return "modified"
	default:
		return "unknown"
	}
}

func (d DateSource) valid() bool {
	return d >= DateExifOriginal && d <= DateFileModified
}

// ParseDateSource accepts "exif", "created" and "modified".
func ParseDateSource(s string) (DateSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exif", "exif_original", "original":
		return DateExifOriginal, nil
	case "created", "file_created", "creation":
		return DateFileCreated, nil
	case "modified", "file_modified", "modification":
		return DateFileModified, nil
	default:
		return 0, errors.Errorf("unknown date source %q (want exif, created or modified)", s)
	}
}

func (d DateSource) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateSource) UnmarshalText(b []byte) error {
	v, err := ParseDateSource(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// 🔠 NameCase is a case rule for either half of a file name.
type NameCase int

const (
	CaseUnchanged NameCase = iota
	CaseLower
	CaseUpper
)

func (n NameCase) String() string {
	switch n {
	case CaseUnchanged:
		return "unchanged"
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	default:
		return "unknown"
	}
}

func (n NameCase) valid() bool {
	return n >= CaseUnchanged && n <= CaseUpper
}

// Apply returns s with the case rule applied.
func (n NameCase) Apply(s string) string {
	switch n {
	case CaseLower:
		return strings.ToLower(s)
	case CaseUpper:
		return strings.ToUpper(s)
	default:
		return s
	}
}

// ParseNameCase accepts "unchanged", "lower" and "upper".
func ParseNameCase(s string) (NameCase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unchanged", "keep", "none":
		return CaseUnchanged, nil
	case "lower", "lowercase":
		return CaseLower, nil
	case "upper", "uppercase":
		return CaseUpper, nil
	default:
		return 0, errors.Errorf("unknown case %q (want unchanged, lower or upper)", s)
	}
}

func (n NameCase) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NameCase) UnmarshalText(b []byte) error {
	v, err := ParseNameCase(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
