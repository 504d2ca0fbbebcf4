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
Package operation runs organizing tasks: it wires file discovery, date
resolution, destination synthesis and the transfer state machine together
behind a single background worker.

	+---------+     +-----------+     +----------+     +-----------+
	|  Task   | --> | discover  | --> | Executor | --> |   Run     | --> events
	|(config) |     | (sorted)  |     | per file |     | aggregate |
	+---------+     +-----------+     +----------+     +-----------+
	                                   |  resolve  |
	                                   | pathbuild |
	                                   | transfer  |

🎯 Purpose:
- Validate a task before anything touches the disk
- Process discovered files strictly in path order
- Report every file as exactly one Outcome and one log line
- Stream lifecycle events to the caller over a channel

🔄 Lifecycle:

	Idle -> Running -> Completed
	                -> Aborted (cancelled, or destination is a file)

Events are always ordered:

	started, processing_started, progress(0,N), {log, progress(i,N)}..., finished
	started, processing_started, progress(0,N), ..., interrupted
	started, processing_started, progress(0,N), ..., log, failed

⚡ Per file (Executor.Process):
 1. resolve the effective date, an error skips the file
 2. build the destination directory and name
 3. directory exists as a plain file: fatal, the run stops
 4. create missing directories (not in dry-run)
 5. existing destination without replace: skipped
 6. destination not writable: error
 7. copy, or move (rename on one volume, copy+delete otherwise)

Dry-run runs every check but never mutates the disk. It reports the same
outcomes a live run would, with each log line prefixed by "[dry-run] ".

🔍 Example:

	run, err := operation.New(operation.Options{Task: t, Store: store})
	if err != nil {
		return err
	}
	events, err := run.Start(ctx)
	if err != nil {
		return err // validation
	}
	for ev := range events {
		fmt.Println(ev.Kind, ev.Message)
	}
	summary, err := run.Wait()
*/
package operation
