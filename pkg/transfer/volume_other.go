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

//go:build !unix

package transfer

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// SameVolume compares volume names, the best available signal without
// device ids.
func SameVolume(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, errors.Errorf("resolving %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, errors.Errorf("resolving %s: %w", b, err)
	}
	return strings.EqualFold(filepath.VolumeName(absA), filepath.VolumeName(absB)), nil
}

// Writable creates and removes a probe file in dir.
func Writable(dir string) error {
	f, err := os.CreateTemp(dir, ".organizr-probe-*")
	if err != nil {
		return errors.Errorf("creating probe file: %w", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}
