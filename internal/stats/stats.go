// Package stats implements the line-oriented statistics report (spec.md
// §6 "Statistics stream"): a minimal textual flow of named entries,
// written with fmt.Fprintf directly rather than a structured encoding —
// spec.md §1 names this an external collaborator, so this package takes
// the simplest correct realization (see DESIGN.md).
package stats

import (
	"fmt"
	"io"
	"time"
)

// Report is the run's statistics snapshot: total wall-clock time and the
// number of subsets the miner visited.
type Report struct {
	TotalTime     time.Duration
	PatternNumber int
}

// Write renders r as spec.md's line-oriented report: "total time" in
// seconds and "pattern number" as an unsigned integer.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "total time: %.6f\n", r.TotalTime.Seconds()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "pattern number: %d\n", r.PatternNumber); err != nil {
		return err
	}
	return nil
}
