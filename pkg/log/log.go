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


package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/organizr/pkg/operation"
	"github.com/walteh/organizr/pkg/status"
)

// 📦 TaskOperation describes the task a run belongs to
type TaskOperation struct {
	Name        string // Task name
	Command     string // copy or move
	Source      string // Source directory
	Destination string // Destination root
	DryRun      bool   // Whether the run only simulates
}

// 🎯 Logger renders runs on a console and mirrors them to zerolog
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *TaskOperation
	operations []status.FileInfo
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// NewWithZerolog creates a logger that mirrors to an existing zerolog logger.
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogOutcome logs the outcome of one file
func (l *Logger) LogOutcome(ctx context.Context, o operation.Outcome) {
	info := status.FileInfo{
		Source: o.Source,
		Dest:   o.Dest,
		Status: status.StatusOf(o.Kind),
		Reason: o.Reason,
		DryRun: o.DryRun,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, info)

	fmt.Fprintln(l.console, status.FormatFileLine(info))

	ev := l.zlog.Info()
	if o.Kind == operation.OutcomeError || o.Kind == operation.OutcomeSkippedDestIsFile {
		ev = l.zlog.Warn().Err(o.Err)
	}
	ev.Str("file", o.Source).
		Str("dest", o.Dest).
		Stringer("outcome", o.Kind).
		Bool("dry_run", o.DryRun).
		Msg(o.Line())
}

// 📝 StartTask starts a new task operation
func (l *Logger) StartTask(ctx context.Context, op TaskOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	verb := "organizing"
	if op.DryRun {
		verb = "simulating"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", verb,
		color.New(color.FgCyan).Sprint(op.Destination))

	fmt.Fprintf(l.console, "%s %s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Command),
		color.New(color.Faint).Sprint(op.Source))

	l.zlog.Info().
		Str("task", op.Name).
		Str("command", op.Command).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Bool("dry_run", op.DryRun).
		Msg("starting task")
}

// 📝 EndTask ends the current task operation and prints its summary
func (l *Logger) EndTask(ctx context.Context, summary operation.Summary) {
	line := status.NewDefaultFormatter().FormatSummary(summary)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, line)

	name := summary.Task
	if l.currentOp != nil {
		name = l.currentOp.Name
	}
	l.zlog.Info().
		Str("task", name).
		Int("files", len(l.operations)).
		Int("transferred", summary.Transferred).
		Int("errors", summary.Errors).
		Bool("interrupted", summary.Interrupted).
		Msg("task complete")

	l.currentOp = nil
	l.operations = nil
}

// 📣 HandleEvent renders a run event. Bind it with Handler to use it as an
// operation.EventHandler.
func (l *Logger) HandleEvent(ctx context.Context, ev operation.Event) {
	switch ev.Kind {
	case operation.EventLog:
		if ev.Outcome != nil {
			l.LogOutcome(ctx, *ev.Outcome)
			return
		}
		l.Info(ev.Message)
	case operation.EventFailed:
		l.Error(ev.Message)
		if ev.Summary != nil {
			l.EndTask(ctx, *ev.Summary)
		}
	case operation.EventFinished, operation.EventInterrupted:
		if ev.Summary != nil {
			l.EndTask(ctx, *ev.Summary)
		}
	}
}

// Handler binds HandleEvent to ctx.
func (l *Logger) Handler(ctx context.Context) operation.EventHandler {
	return func(ev operation.Event) { l.HandleEvent(ctx, ev) }
}

// Files returns the outcomes logged since the current task started.
func (l *Logger) Files() []status.FileInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]status.FileInfo(nil), l.operations...)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("organizr")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
