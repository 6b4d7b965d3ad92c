package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/panbanda/phprune/internal/output"
)

// messages returns a formatter for status lines on w.
func messages(w io.Writer) *output.Formatter {
	return output.NewWriterFormatter(w, output.FormatText, !color.NoColor)
}

// phaseTimer prints "(12.3ms) message" lines, each measuring the time since
// the previous line.
type phaseTimer struct {
	w     io.Writer
	start time.Time
}

func startPhases(w io.Writer) *phaseTimer {
	return &phaseTimer{w: w, start: time.Now()}
}

func (p *phaseTimer) done(format string, args ...any) {
	elapsed := time.Since(p.start)
	fmt.Fprintf(p.w, "(%.1fms) %s\n", float64(elapsed.Microseconds())/1000, fmt.Sprintf(format, args...))
	p.start = time.Now()
}

// reset restarts the clock without printing, after time spent waiting on prompts.
func (p *phaseTimer) reset() {
	p.start = time.Now()
}
