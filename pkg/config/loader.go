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


package config

import (
	"context"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// RCName is the extension-less task file, in either YAML or HCL.
const RCName = ".organizr"

// DefaultNames are the file names FindFile looks for, in order.
var DefaultNames = []string{
	"organizr.yaml",
	"organizr.yml",
	"organizr.hcl",
	"organizr.json",
	RCName,
}

func init() {
	Register(&rcParser{})
}

// rcParser handles .organizr files. YAML is tried first, then HCL.
type rcParser struct{}

func (p *rcParser) CanParse(filename string) bool {
	return filepath.Base(filename) == RCName
}

func (p *rcParser) Parse(ctx context.Context, filename string, data []byte) (*File, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, filename, data)
	if yamlErr == nil {
		return cfg, nil
	}

	cfg, hclErr := (&HCLParser{}).Parse(ctx, filename, data)
	if hclErr == nil {
		return cfg, nil
	}

	return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", RCName, yamlErr, hclErr)
}

// 🔍 FindFile returns the first task file from DefaultNames in dir.
func FindFile(dir string) (string, error) {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", errors.Errorf("no task file found in %s (looked for %v)", dir, DefaultNames)
}
