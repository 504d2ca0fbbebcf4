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


package status

import (
	"fmt"
	"time"

	"github.com/walteh/organizr/pkg/operation"
)

// 🎨 Formatter renders run state as one-line messages
type Formatter interface {
	// FormatFile formats the status of one tracked file
	FormatFile(info FileInfo) string
	// FormatProgress formats a progress message
	FormatProgress(current, total int) string
	// FormatSummary formats the summary of a finished run
	FormatSummary(summary operation.Summary) string
	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatFile formats a file status message with emojis
func (f *DefaultFormatter) FormatFile(info FileInfo) string {
	prefix := ""
	if info.DryRun {
		prefix = operation.DryRunPrefix
	}
	switch info.Status {
	case StatusTransferred:
		return fmt.Sprintf("%s✨ %s → %s", prefix, info.Source, info.Dest)
	case StatusSkipped:
		return fmt.Sprintf("%s👍 Skipped %s (%s)", prefix, info.Source, info.Reason)
	case StatusBlocked:
		return fmt.Sprintf("%s🚧 Blocked %s (%s)", prefix, info.Source, info.Reason)
	case StatusFailed:
		return fmt.Sprintf("%s❌ Failed %s (%s)", prefix, info.Source, info.Reason)
	default:
		return fmt.Sprintf("%s❔ %s", prefix, info.Source)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatSummary formats a run summary with an emoji for its final state
func (f *DefaultFormatter) FormatSummary(s operation.Summary) string {
	var icon, word string
	switch {
	case s.Interrupted:
		icon, word = "⏹️ ", "interrupted"
	case s.Status == operation.StatusAborted:
		icon, word = "🛑", "aborted"
	case s.Errors > 0:
		icon, word = "⚠️ ", "completed with errors"
	default:
		icon, word = "🎉", "completed"
	}

	prefix := ""
	if s.DryRun {
		prefix = operation.DryRunPrefix
	}

	return fmt.Sprintf("%s%s %s %s: %d/%d processed, %d transferred, %d skipped, %d errors (%s)",
		prefix, icon, s.Task, word, s.Processed(), s.Total, s.Transferred, s.Skipped(), s.Errors,
		s.Elapsed.Round(time.Millisecond))
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
