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

//go:build unix

package transfer

import (
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

// SameVolume compares the device ids of two existing paths.
func SameVolume(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, errors.Errorf("stat %s: %w", a, err)
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, errors.Errorf("stat %s: %w", b, err)
	}
	return sa.Dev == sb.Dev, nil
}

// Writable uses access(2), which honours the effective uid and read-only mounts.
func Writable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return errors.Errorf("access %s: %w", dir, err)
	}
	return nil
}
