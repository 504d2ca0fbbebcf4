/*
Package watch re-runs a task when its source directory changes.

	fsnotify ──► handle ──► schedule ──(quiet period)──► signal
	                                                       │
	                                          fire (cap 1) ▼
	                                               pass ──► Trigger

Events are filtered by the task's name pattern and by ignored prefixes, so
a destination inside the source does not trigger itself. Every change
restarts the debounce timer; a pass starts only after the directory has
been quiet for Options.Debounce. One goroutine runs passes, so two passes
never overlap, and changes that arrive during a pass are collected into the
next one.

Example:

	w, err := watch.New(watch.Options{
		Dir:       t.SourceDir,
		Recursive: t.Recursive,
		Pattern:   t.NamePattern,
		Ignore:    []string{t.DestDir},
		Trigger: func(ctx context.Context, changed []string) error {
			_, err := runner.Run(ctx, operation.Options{Task: t})
			return err
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
*/
package watch
