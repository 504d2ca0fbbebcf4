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


/*
Package config loads task definition files for organizr.

	            +-------------+
	            |    File     |
	            |  (tasks)    |
	            +------+------+
	                   |
	   +---------------+---------------+
	   |               |               |
	+--+---+       +---+---+       +---+---+
	| YAML |       |  HCL  |       | JSON  |
	+------+       +-------+       +-------+

🎯 Purpose:
- Reads a list of named tasks from YAML, HCL or JSON
- Rejects unknown fields and misspelled enum values early
- Resolves relative paths against the file's directory

📄 YAML:

	tasks:
	  - name: photos
	    source: inbox
	    destination: ~/Pictures/library
	    pattern: "{*.jpg,*.JPG}"
	    recursive: true
	    date_source: exif
	    date_pattern: yyyy/MM/yyyy-MM-dd
	    ext_case: lower
	    command: move

📄 HCL (home, config_dir and env are available in expressions):

	task "photos" {
	  source       = "${home}/inbox"
	  destination  = "${home}/Pictures/library"
	  pattern      = "{*.jpg,*.JPG}"
	  recursive    = true
	  date_pattern = "yyyy/MM/yyyy-MM-dd"
	  command      = "copy"
	}

A file named .organizr may hold either YAML or HCL.

🔍 Example:

	cfg, err := config.Load(ctx, "organizr.yaml")
	if err != nil {
		return err
	}
	t, err := cfg.Find("photos")
*/
package config
