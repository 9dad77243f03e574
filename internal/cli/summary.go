package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// printSummary writes the post-conversion report.
func printSummary(w io.Writer, r *Report) {
	title := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)

	fmt.Fprintln(w)
	title.Fprintln(w, "Trace Conversion")
	fmt.Fprintf(w, "  ├─ Events:   %d\n", r.Events)
	fmt.Fprintf(w, "  ├─ Records:  %d\n", r.Records)
	fmt.Fprintf(w, "  ├─ Pools:    %d\n", r.Pools)
	fmt.Fprintf(w, "  ├─ Threads:  %d\n", r.Threads)
	fmt.Fprintf(w, "  ├─ Jobs:     %d\n", r.Jobs)
	fmt.Fprintf(w, "  ├─ Span:     %d µs\n", r.SpanMicros)
	fmt.Fprintf(w, "  ├─ Took:     %s\n", r.Duration.Round(time.Microsecond))
	ok.Fprintf(w, "  └─ Output:   %s\n", r.Output)
}
