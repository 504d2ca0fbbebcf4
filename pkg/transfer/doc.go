/*
Package transfer performs the filesystem mutations of an organizing run.

	            +-------------+
	            |  Transfer   |
	            |  (Manager)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+             +-----+-----+
	|   Copy    |             |   Move    |
	| temp+swap |             | rename or |
	+-----------+             | copy+del  |
	                          +-----------+

🎯 Purpose:
- Probe what sits at a destination path (missing, directory, file)
- Create destination directories
- Copy bytes without ever leaving a half written destination
- Move files, falling back to copy+delete across volumes

⚡ Key Responsibilities:
- Conflict-safe writes: content lands in a temp file next to the
  destination and is renamed into place
- Volume detection by device id (unix) or volume name (elsewhere)
- Writability checks through access(2)

🤝 Interfaces:
- The operation package owns the decision of what to do with a file; this
  package only carries it out and reports errors.
- SameVolume and Writable are fields so tests can simulate other volumes
  and read-only directories.

🔍 Example:

	mgr := transfer.NewManager()
	if err := mgr.CreateDir(dir); err != nil {
		return err
	}
	strategy, err := mgr.Move(ctx, src, filepath.Join(dir, name))
*/
package transfer
