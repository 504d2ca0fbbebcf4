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


package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/organizr/pkg/config"
)

func ExampleLoad() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "organizr-example-*")
	if err != nil {
		fmt.Printf("Error creating dir: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	configYAML := `
tasks:
  - name: photos
    source: /inbox
    destination: /library
    pattern: "{*.jpg,*.JPG}"
    date_pattern: "yyyy/MM"
    command: move
`
	configPath := filepath.Join(dir, "organizr.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0o644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	t, err := cfg.Find("photos")
	if err != nil {
		fmt.Printf("Error finding task: %v\n", err)
		return
	}

	fmt.Println(t.Name, t.Command, t.DateSource)
	fmt.Println(t.SourceDir, "->", t.DestDir)
	fmt.Println(t.NamePattern, t.DatePattern)
	// Output:
	// photos move exif
	// /inbox -> /library
	// {*.jpg,*.JPG} yyyy/MM
}
