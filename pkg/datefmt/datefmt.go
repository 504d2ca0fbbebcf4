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

// Package datefmt compiles and expands date patterns written with
// SimpleDateFormat-style letters (yyyy, MM, dd, ww, HH, ...).
//
// Letters repeat to choose a width or a textual form. Text between single
// quotes is copied verbatim and '' produces one quote. Every other
// non-letter rune, including '/', is copied as-is, which is how a pattern
// such as "yyyy/MM/yyyy-MM-dd" ends up describing nested directories.
package datefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPattern is returned by Compile for malformed patterns.
var ErrInvalidPattern = errors.Base("invalid date pattern")

type field int

const (
	fieldLiteral field = iota
	fieldYear
	fieldWeekYear
	fieldMonth
	fieldDay
	fieldDayOfYear
	fieldWeek
	fieldDayName
	fieldDayNumber
	fieldAmPm
	fieldHour0To23
	fieldHour1To24
	fieldHour0To11
	fieldHour1To12
	fieldMinute
	fieldSecond
	fieldMillis
	fieldZoneName
	fieldZoneOffset
)

var letters = map[rune]field{
	'y': fieldYear,
	'Y': fieldWeekYear,
	'M': fieldMonth,
	'L': fieldMonth,
	'd': fieldDay,
	'D': fieldDayOfYear,
	'w': fieldWeek,
	'E': fieldDayName,
	'u': fieldDayNumber,
	'a': fieldAmPm,
	'H': fieldHour0To23,
	'k': fieldHour1To24,
	'K': fieldHour0To11,
	'h': fieldHour1To12,
	'm': fieldMinute,
	's': fieldSecond,
	'S': fieldMillis,
	'z': fieldZoneName,
	'Z': fieldZoneOffset,
}

type element struct {
	field   field
	width   int
	literal string
}

// 📅 Pattern is a compiled date pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw   string
	elems []element
}

// Compile parses layout into a Pattern.
func Compile(layout string) (*Pattern, error) {
	if strings.TrimSpace(layout) == "" {
		return nil, errors.WithMessage(ErrInvalidPattern, "pattern is empty")
	}

	p := &Pattern{raw: layout}
	runes := []rune(layout)
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			p.elems = append(p.elems, element{field: fieldLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case r == '\'':
			if i+1 < len(runes) && runes[i+1] == '\'' {
				lit.WriteRune('\'')
				i += 2
				continue
			}
			start := i
			closed := false
			for i++; i < len(runes); i++ {
				if runes[i] != '\'' {
					lit.WriteRune(runes[i])
					continue
				}
				if i+1 < len(runes) && runes[i+1] == '\'' {
					lit.WriteRune('\'')
					i++
					continue
				}
				closed = true
				break
			}
			if !closed {
				return nil, errors.WithMessagef(ErrInvalidPattern, "unterminated quote at position %d in %q", start, layout)
			}
			i++

		case isASCIILetter(r):
			f, ok := letters[r]
			if !ok {
				return nil, errors.WithMessagef(ErrInvalidPattern, "unknown pattern letter %q in %q", r, layout)
			}
			n := 1
			for i+n < len(runes) && runes[i+n] == r {
				n++
			}
			flush()
			p.elems = append(p.elems, element{field: f, width: n})
			i += n

		default:
			lit.WriteRune(r)
			i++
		}
	}
	flush()

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(layout string) *Pattern {
	p, err := Compile(layout)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source layout.
func (p *Pattern) String() string {
	return p.raw
}

// Format expands the pattern for t.
func (p *Pattern) Format(t time.Time) string {
	var b strings.Builder
	for _, e := range p.elems {
		b.WriteString(e.format(t))
	}
	return b.String()
}

func (e element) format(t time.Time) string {
	switch e.field {
	case fieldLiteral:
		return e.literal
	case fieldYear:
		return formatYear(t.Year(), e.width)
	case fieldWeekYear:
		y, _ := t.ISOWeek()
		return formatYear(y, e.width)
	case fieldMonth:
		switch {
		case e.width >= 4:
			return t.Month().String()
		case e.width == 3:
			return t.Month().String()[:3]
		default:
			return pad(int(t.Month()), e.width)
		}
	case fieldDay:
		return pad(t.Day(), e.width)
	case fieldDayOfYear:
		return pad(t.YearDay(), e.width)
	case fieldWeek:
		_, w := t.ISOWeek()
		return pad(w, e.width)
	case fieldDayName:
		if e.width >= 4 {
			return t.Weekday().String()
		}
		return t.Weekday().String()[:3]
	case fieldDayNumber:
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return pad(wd, e.width)
	case fieldAmPm:
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case fieldHour0To23:
		return pad(t.Hour(), e.width)
	case fieldHour1To24:
		h := t.Hour()
		if h == 0 {
			h = 24
		}
		return pad(h, e.width)
	case fieldHour0To11:
		return pad(t.Hour()%12, e.width)
	case fieldHour1To12:
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, e.width)
	case fieldMinute:
		return pad(t.Minute(), e.width)
	case fieldSecond:
		return pad(t.Second(), e.width)
	case fieldMillis:
		return pad(t.Nanosecond()/int(time.Millisecond), e.width)
	case fieldZoneName:
		name, _ := t.Zone()
		return name
	case fieldZoneOffset:
		return t.Format("-0700")
	default:
		panic(fmt.Sprintf("datefmt: unhandled field %d", e.field))
	}
}

// two letters mean a two digit year, anything else is the full year
func formatYear(year, width int) string {
	if width == 2 {
		return pad(year%100, 2)
	}
	return pad(year, width)
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
