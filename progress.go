package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// progressInterval limits how often the progress line is redrawn.
const progressInterval = 200 * time.Millisecond

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressPrinter redraws a single "Uploading: x / y" line. A nil printer
// is valid and prints nothing.
type progressPrinter struct {
	w       io.Writer
	total   int64
	last    time.Time
	printed bool
	nowFunc func() time.Time
}

func newProgressPrinter(w io.Writer, total int64) *progressPrinter {
	return &progressPrinter{w: w, total: total, nowFunc: time.Now}
}

func (p *progressPrinter) update(copied int64) {
	now := p.nowFunc()
	if p.printed && copied < p.total && now.Sub(p.last) < progressInterval {
		return
	}

	p.last = now
	p.printed = true
	fmt.Fprintf(p.w, "\rUploading: %s / %s", formatSize(copied), formatSize(p.total))
}

// done ends the progress line.
func (p *progressPrinter) done() {
	if p == nil || !p.printed {
		return
	}

	fmt.Fprintln(p.w)
}
