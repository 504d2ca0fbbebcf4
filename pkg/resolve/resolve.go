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

// Package resolve finds the effective date of a file.
//
// A failed resolution is always an error. There is no fallback to the
// current time or to another date source.
package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/walteh/organizr/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// exifLayout is the fixed EXIF 2.x date-time layout.
const exifLayout = "2006:01:02 15:04:05"

var (
	// ErrExifNotFound means the file carries no EXIF block, or one without
	// the EXIF sub-IFD.
	ErrExifNotFound = errors.Base("EXIF data not found")
	// ErrFormatNotSupported means the EXIF sub-IFD exists but the original
	// capture time is missing or unreadable.
	ErrFormatNotSupported = errors.Base("file format not supported")
)

// ❌ Error is a per-file resolution failure. It matches ErrExifNotFound or
// ErrFormatNotSupported with errors.Is.
type Error struct {
	Path  string
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s for file %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// 📅 Resolver produces effective dates.
type Resolver struct {
	// Location is applied to EXIF timestamps, which carry no zone.
	Location *time.Location
}

// New returns a Resolver that reads EXIF times as local time.
func New() *Resolver {
	return &Resolver{Location: time.Local}
}

// Resolve returns the effective date of path according to source.
func (r *Resolver) Resolve(ctx context.Context, path string, source task.DateSource) (time.Time, error) {
	switch source {
	case task.DateFileModified:
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, errors.Errorf("reading file metadata: %w", err)
		}
		return info.ModTime(), nil

	case task.DateFileCreated:
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, errors.Errorf("reading file metadata: %w", err)
		}
		return birthTime(path, info), nil

	case task.DateExifOriginal:
		return r.exifOriginal(ctx, path)

	default:
		return time.Time{}, errors.Errorf("unknown date source %d", source)
	}
}

func (r *Resolver) exifOriginal(ctx context.Context, path string) (time.Time, error) {
	logger := zerolog.Ctx(ctx)

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return time.Time{}, errors.WithStack(&Error{Path: path, Kind: ErrExifNotFound, Cause: err})
		}
		// a broken GPS or interop block does not hide the capture time
		logger.Debug().Err(err).Str("file", path).Msg("partial EXIF data")
	}

	// the capture time lives in the EXIF sub-IFD, IFD0 alone is not enough
	if _, err := x.Get(exif.ExifIFDPointer); err != nil {
		return time.Time{}, errors.WithStack(&Error{Path: path, Kind: ErrExifNotFound, Cause: err})
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, errors.WithStack(&Error{Path: path, Kind: ErrFormatNotSupported, Cause: err})
	}

	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, errors.WithStack(&Error{Path: path, Kind: ErrFormatNotSupported, Cause: err})
	}

	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(exifLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errors.WithStack(&Error{Path: path, Kind: ErrFormatNotSupported, Cause: err})
	}

	return t, nil
}
