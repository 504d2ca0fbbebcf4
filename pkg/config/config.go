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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/task"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultNamePattern matches every file.
	DefaultNamePattern = "*"
	// DefaultDatePattern files by year, month and day.
	DefaultDatePattern = "yyyy/MM/yyyy-MM-dd"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, filename string, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 File is a task definition file.
type File struct {
	Tasks []TaskDef `json:"tasks" yaml:"tasks" hcl:"task,block"`

	// location is the path the file was loaded from
	location string
}

// 📋 TaskDef is one task as written in a file. Enums are plain strings
// so every format spells them the same way.
type TaskDef struct {
	Name        string `json:"name" yaml:"name" hcl:"name,label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`

	Source      string `json:"source" yaml:"source" hcl:"source"`
	Destination string `json:"destination" yaml:"destination" hcl:"destination"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`
	Recursive   bool   `json:"recursive,omitempty" yaml:"recursive,omitempty" hcl:"recursive,optional"`
	FollowLinks bool   `json:"follow_links,omitempty" yaml:"follow_links,omitempty" hcl:"follow_links,optional"`

	DateSource  string `json:"date_source,omitempty" yaml:"date_source,omitempty" hcl:"date_source,optional"`
	DatePattern string `json:"date_pattern,omitempty" yaml:"date_pattern,omitempty" hcl:"date_pattern,optional"`

	BaseCase string `json:"base_case,omitempty" yaml:"base_case,omitempty" hcl:"base_case,optional"`
	ExtCase  string `json:"ext_case,omitempty" yaml:"ext_case,omitempty" hcl:"ext_case,optional"`

	ReplaceExisting bool   `json:"replace_existing,omitempty" yaml:"replace_existing,omitempty" hcl:"replace_existing,optional"`
	DryRun          bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
	Command         string `json:"command" yaml:"command" hcl:"command"`
}

// 🎯 Load loads a task file. The format is picked from the file name.
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("tasks", len(cfg.Tasks)).Msg("configuration loaded")
	return cfg, nil
}

// Location returns the absolute path the file was loaded from.
func (cfg *File) Location() string {
	return cfg.location
}

// Dir is the directory relative task paths are resolved against.
func (cfg *File) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// 🔍 Validate checks names and enum spellings. Paths are checked when a
// task is run.
func (cfg *File) Validate() error {
	if len(cfg.Tasks) == 0 {
		return errors.Errorf("no tasks defined")
	}

	seen := map[string]bool{}
	for i, def := range cfg.Tasks {
		if strings.TrimSpace(def.Name) == "" {
			return errors.Errorf("task %d: name is required", i)
		}
		if seen[def.Name] {
			return errors.Errorf("task %s: duplicate name", def.Name)
		}
		seen[def.Name] = true

		if _, err := def.Task(cfg.Dir()); err != nil {
			return errors.Errorf("task %s: %w", def.Name, err)
		}
	}

	return nil
}

// Names lists the task names in file order.
func (cfg *File) Names() []string {
	names := make([]string, 0, len(cfg.Tasks))
	for _, def := range cfg.Tasks {
		names = append(names, def.Name)
	}
	return names
}

// 🔎 Find returns the named task, resolved against the file's directory.
func (cfg *File) Find(name string) (*task.Task, error) {
	for _, def := range cfg.Tasks {
		if def.Name == name {
			return def.Task(cfg.Dir())
		}
	}
	return nil, errors.Errorf("task %q not found (have %s)", name, strings.Join(cfg.Names(), ", "))
}

// All returns every task, resolved against the file's directory.
func (cfg *File) All() ([]*task.Task, error) {
	out := make([]*task.Task, 0, len(cfg.Tasks))
	for _, def := range cfg.Tasks {
		t, err := def.Task(cfg.Dir())
		if err != nil {
			return nil, errors.Errorf("task %s: %w", def.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// 🔄 Task converts the definition. Relative paths are joined to baseDir and
// a leading ~ is expanded to the home directory.
func (def TaskDef) Task(baseDir string) (*task.Task, error) {
	cmd, err := task.ParseCommand(def.Command)
	if err != nil {
		return nil, err
	}

	source := def.DateSource
	if source == "" {
		source = task.DateExifOriginal.String()
	}
	dateSource, err := task.ParseDateSource(source)
	if err != nil {
		return nil, err
	}

	baseCase, err := task.ParseNameCase(def.BaseCase)
	if err != nil {
		return nil, errors.Errorf("base_case: %w", err)
	}
	extCase, err := task.ParseNameCase(def.ExtCase)
	if err != nil {
		return nil, errors.Errorf("ext_case: %w", err)
	}

	t := &task.Task{
		Name:            def.Name,
		Description:     def.Description,
		SourceDir:       resolvePath(baseDir, def.Source),
		DestDir:         resolvePath(baseDir, def.Destination),
		NamePattern:     orDefault(def.Pattern, DefaultNamePattern),
		Recursive:       def.Recursive,
		FollowLinks:     def.FollowLinks,
		DateSource:      dateSource,
		DatePattern:     orDefault(def.DatePattern, DefaultDatePattern),
		BaseCase:        baseCase,
		ExtCase:         extCase,
		ReplaceExisting: def.ReplaceExisting,
		DryRun:          def.DryRun,
		Command:         cmd,
	}
	return t, nil
}

// 📝 String returns a string representation of the definition
func (def TaskDef) String() string {
	return fmt.Sprintf("%s: %s %s -> %s", def.Name, def.Command, def.Source, def.Destination)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func resolvePath(baseDir, p string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
