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


package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/organizr/cmd/organizr/opts"
)

// NewListCmd creates the list command
func NewListCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of the task file",
		Long: `List prints every task defined in the task file with its command,
source and destination, and when it last transferred files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := selectTasks(o, nil)
			if err != nil {
				return err
			}

			data := pterm.TableData{{"TASK", "COMMAND", "SOURCE", "DESTINATION", "PATTERN", "LAST RUN", "RUNS"}}
			for _, t := range tasks {
				lastRun, runs := "never", "0"
				if o.State != nil {
					if ts, ok := o.State.Task(t.Name); ok {
						runs = strconv.Itoa(ts.RunCount)
					}
				}
				if !t.LastRun.IsZero() {
					lastRun = t.LastRun.Local().Format(time.DateTime)
				}
				command := t.Command.String()
				if t.DryRun {
					command += " (dry-run)"
				}
				data = append(data, []string{t.Name, command, t.SourceDir, t.DestDir, t.DatePattern, lastRun, runs})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	return cmd
}
