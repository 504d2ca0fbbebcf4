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

// Package testutils builds fixtures shared by tests across packages.
package testutils

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TIFF field types used by the fixtures.
const (
	TypeASCII uint16 = 2
	TypeShort uint16 = 3
	TypeLong  uint16 = 4
)

const (
	tagExifPointer      uint16 = 0x8769
	TagDateTimeOriginal uint16 = 0x9003
	TagDateTimeDigitize uint16 = 0x9004
	TagOrientation      uint16 = 0x0112
)

// 🏷️ Entry is one tag written into the EXIF sub-IFD.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Data  []byte
}

// ASCII builds a NUL terminated string entry.
func ASCII(tag uint16, s string) Entry {
	data := append([]byte(s), 0)
	return Entry{Tag: tag, Type: TypeASCII, Count: uint32(len(data)), Data: data}
}

// Short builds a single SHORT entry.
func Short(tag uint16, v uint16) Entry {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, v)
	return Entry{Tag: tag, Type: TypeShort, Count: 1, Data: data}
}

// DateTimeOriginal is the entry a camera writes for the capture time,
// formatted as "2006:01:02 15:04:05".
func DateTimeOriginal(value string) Entry {
	return ASCII(TagDateTimeOriginal, value)
}

// ExifJPEG returns a minimal JPEG whose APP1 segment holds an EXIF block.
// IFD0 only points at the EXIF sub-IFD, which holds entries.
func ExifJPEG(entries ...Entry) []byte {
	var tiff bytes.Buffer
	writeHeader(&tiff)

	subOffset := uint32(8 + 2 + 12 + 4)
	writeIFD(&tiff, 8, []Entry{Long(tagExifPointer, subOffset)})
	writeIFD(&tiff, subOffset, entries)

	return wrapAPP1(tiff.Bytes())
}

// IFD0JPEG returns a JPEG whose EXIF block has entries directly in IFD0
// and no EXIF sub-IFD at all.
func IFD0JPEG(entries ...Entry) []byte {
	var tiff bytes.Buffer
	writeHeader(&tiff)
	writeIFD(&tiff, 8, entries)
	return wrapAPP1(tiff.Bytes())
}

// Long builds a single LONG entry.
func Long(tag uint16, v uint32) Entry {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return Entry{Tag: tag, Type: TypeLong, Count: 1, Data: data}
}

func writeHeader(tiff *bytes.Buffer) {
	tiff.WriteString("II")
	binary.Write(tiff, binary.LittleEndian, uint16(42))
	binary.Write(tiff, binary.LittleEndian, uint32(8))
}

// writeIFD appends an IFD that starts at offset, with values longer than
// four bytes stored right after it. The chain ends here.
func writeIFD(tiff *bytes.Buffer, offset uint32, entries []Entry) {
	le := binary.LittleEndian
	dataOffset := offset + 2 + uint32(12*len(entries)) + 4
	var data bytes.Buffer
	binary.Write(tiff, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(tiff, le, e.Tag)
		binary.Write(tiff, le, e.Type)
		binary.Write(tiff, le, e.Count)
		if len(e.Data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.Data)
			tiff.Write(inline)
			continue
		}
		binary.Write(tiff, le, dataOffset+uint32(data.Len()))
		data.Write(e.Data)
	}
	binary.Write(tiff, le, uint32(0))
	tiff.Write(data.Bytes())
}

func wrapAPP1(tiff []byte) []byte {
	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(2+6+len(tiff)))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff)
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}

// PlainJPEG returns JPEG markers with no APP1 segment at all.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x03, 0x00, 0xFF, 0xD9}
}

// WriteFile writes content to dir/name, creating dir, and returns the path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "creating parent dir")
	require.NoError(t, os.WriteFile(path, content, 0o644), "writing fixture")
	return path
}
