package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs human-readable reports.
type TextWriter struct{}

func (t *TextWriter) WriteReport(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("Scrub %s mode, %s\n", report.Mode, report.Style)
	ew.println(strings.Repeat("─", 60))

	for _, o := range report.Outcomes {
		ew.printf("%s %s\n", outcomeIcon(o), o.Path)
		switch {
		case !o.OK:
			ew.printf("    %s (%s)\n", o.Reason, o.Kind)
		case o.Diagnostics != nil:
			d := o.Diagnostics
			ew.printf("    -> %s\n", o.Output)
			if !o.Redacted {
				ew.println("    timed out, saved without redaction")
			}
			ew.printf("    %d lines, %d hits, %d regions in %dms\n",
				d.Lines, d.Hits, d.Regions, d.Timing.TotalMs)
		default:
			ew.printf("    -> %s\n", o.Output)
		}
	}

	s := report.Summary
	ew.println(strings.Repeat("─", 60))
	ew.printf("%d images: %d redacted, %d failed", s.Total, s.Succeeded-s.Unredacted, s.Failed)
	if s.Unredacted > 0 {
		ew.printf(", %d saved unredacted", s.Unredacted)
	}
	ew.printf(" (%dms)\n", report.TotalMs)
	return ew.err
}

func (t *TextWriter) WriteScan(w io.Writer, report *ScanReport) error {
	ew := &errWriter{w: w}
	if report.TotalHits == 0 {
		ew.println("No sensitive text found.")
		return ew.err
	}
	for _, l := range report.Lines {
		ew.printf("%d: %s\n", l.Line, l.Text)
		for _, h := range l.Hits {
			ew.printf("    [%d:%d] %-20s %q\n", h.Start, h.End, h.Kind, h.Text)
		}
	}
	ew.printf("\n%d hits on %d lines\n", report.TotalHits, len(report.Lines))
	return ew.err
}

func outcomeIcon(o Outcome) string {
	switch {
	case !o.OK:
		return "[!!]"
	case !o.Redacted:
		return "[!]"
	default:
		return "[ok]"
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
