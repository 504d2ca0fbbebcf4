/*
Package status tracks what a run did to each file and reports it.

	     operation.Run
	           |
	        events
	           |
	    +------+------+
	    |   Manager   |
	    +------+------+
	           |
	  +--------+--------+
	  |        |        |
	files   progress  summaries
	  |                 |
	Formatter      WriteReport
	(UI/UX)          (JSON)

🎯 Purpose:
- Follows the event stream of one or more runs
- Keeps the last known status of every source file
- Formats progress, files and summaries for people
- Writes a JSON report of everything observed

🔄 Flow:
 1. A progress event with Current 0 starts an operation
 2. Every log event that carries an Outcome becomes a FileInfo
 3. Later progress events advance the counter
 4. A terminal event records the run Summary

🔍 Example:

	st := status.New(logger)
	summary, err := operation.NewRunner(logger, st.Handler(ctx)).Run(ctx, opts)

	for _, f := range st.Failures(ctx) {
		fmt.Println(status.FormatFileLine(f))
	}

	err = st.WriteReport(ctx, "organizr-report.json")
*/
package status
