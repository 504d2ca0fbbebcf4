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

package transfer

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📂 Kind describes what currently sits at a path.
type Kind int

const (
	KindMissing Kind = iota
	KindDir
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindDir:
		return "directory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// 🚚 Strategy is how a move was carried out.
type Strategy int

const (
	StrategyRename Strategy = iota
	StrategyCopyDelete
)

func (s Strategy) String() string {
	if s == StrategyCopyDelete {
		return "copy+delete"
	}
	return "rename"
}

// ErrSameFile is returned when source and destination name the same file.
var ErrSameFile = errors.Base("source and destination are the same file")

// 💾 Manager performs the filesystem mutations of a run.
type Manager struct {
	// SameVolume reports whether two existing paths live on the same
	// filesystem volume. Defaults to a device id comparison.
	SameVolume func(a, b string) (bool, error)
	// Writable returns nil when files can be created in dir.
	Writable func(dir string) error
}

// NewManager returns a Manager using the platform volume and access checks.
func NewManager() *Manager {
	return &Manager{
		SameVolume: SameVolume,
		Writable:   Writable,
	}
}

// Probe reports what exists at path. Symbolic links are followed.
func (m *Manager) Probe(path string) (Kind, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return KindDir, nil
	case err == nil:
		return KindFile, nil
	case os.IsNotExist(err):
		return KindMissing, nil
	default:
		return KindMissing, errors.Errorf("checking %s: %w", path, err)
	}
}

// SameFile reports whether a and b name the same existing file. A missing
// path is never the same as anything.
func (m *Manager) SameFile(a, b string) (bool, error) {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}
	ai, err := os.Stat(a)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Errorf("checking %s: %w", a, err)
	}
	bi, err := os.Stat(b)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Errorf("checking %s: %w", b, err)
	}
	return os.SameFile(ai, bi), nil
}

// CreateDir creates dir and any missing parents.
func (m *Manager) CreateDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}
	return nil
}

// CheckWritable returns an error when dir does not accept new files.
func (m *Manager) CheckWritable(dir string) error {
	check := m.Writable
	if check == nil {
		check = Writable
	}
	return check(dir)
}

// 📋 Copy copies src to dst through a temporary file in dst's directory, so
// dst is either absent, its previous content, or the complete copy. Mode
// and modification time are carried over.
func (m *Manager) Copy(ctx context.Context, src, dst string) error {
	if same, err := m.SameFile(src, dst); err != nil {
		return err
	} else if same {
		return errors.WithMessagef(ErrSameFile, "%s", dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("reading source metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return errors.Errorf("setting file mode: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("setting file times: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tmpPath, dst); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	committed = true

	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Int64("bytes", info.Size()).Msg("copied file")
	return nil
}

// 🚚 Move moves src to dst. A plain rename is only used when both sides are
// on the same volume and dst does not exist yet; otherwise the file is
// copied and the source removed afterwards.
func (m *Manager) Move(ctx context.Context, src, dst string) (Strategy, error) {
	logger := zerolog.Ctx(ctx)

	strategy := StrategyRename

	if same, err := m.SameFile(src, dst); err != nil {
		return strategy, err
	} else if same {
		return strategy, errors.WithMessagef(ErrSameFile, "%s", dst)
	}

	kind, err := m.Probe(dst)
	if err != nil {
		return strategy, err
	}
	if kind != KindMissing {
		strategy = StrategyCopyDelete
	} else {
		sameVolume := m.SameVolume
		if sameVolume == nil {
			sameVolume = SameVolume
		}
		same, err := sameVolume(src, filepath.Dir(dst))
		if err != nil {
			logger.Debug().Err(err).Str("src", src).Str("dst", dst).Msg("volume check failed, falling back to copy")
			same = false
		}
		if !same {
			strategy = StrategyCopyDelete
		}
	}

	logger.Debug().Str("src", src).Str("dst", dst).Stringer("strategy", strategy).Msg("moving file")

	if strategy == StrategyRename {
		if err := os.Rename(src, dst); err != nil {
			return strategy, errors.Errorf("renaming file: %w", err)
		}
		return strategy, nil
	}

	if err := m.Copy(ctx, src, dst); err != nil {
		return strategy, err
	}
	if err := os.Remove(src); err != nil {
		return strategy, errors.Errorf("removing source after copy: %w", err)
	}
	return strategy, nil
}
