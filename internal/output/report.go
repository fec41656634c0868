package output

import (
	"errors"

	"github.com/dshills/scrub/internal/detect"
	"github.com/dshills/scrub/internal/pipeline"
)

// Outcome is the result of redacting one image.
type Outcome struct {
	Path        string                `json:"path"`
	Output      string                `json:"output,omitempty"`
	OK          bool                  `json:"ok"`
	Redacted    bool                  `json:"redacted"`
	Kind        string                `json:"kind,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	Diagnostics *pipeline.Diagnostics `json:"diagnostics,omitempty"`
}

// NewOutcome converts a pipeline result or error into an Outcome.
func NewOutcome(path string, res *pipeline.Result, err error) Outcome {
	if err != nil {
		o := Outcome{Path: path, Reason: err.Error()}
		var pe *pipeline.Error
		if errors.As(err, &pe) {
			o.Kind = string(pe.Kind)
			o.Reason = pe.Reason()
		}
		return o
	}
	d := res.Diagnostics
	return Outcome{
		Path:        path,
		Output:      res.Path,
		OK:          true,
		Redacted:    res.Redacted,
		Diagnostics: &d,
	}
}

// Summary counts outcomes.
type Summary struct {
	Total      int `json:"total"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	Unredacted int `json:"unredacted"`
}

// Report is the result of one redact command.
type Report struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	Mode     string    `json:"mode"`
	Style    string    `json:"style"`
	Outcomes []Outcome `json:"outcomes"`
	Summary  Summary   `json:"summary"`
	TotalMs  int64     `json:"totalMs"`
}

// Summarize recomputes r.Summary from r.Outcomes.
func (r *Report) Summarize() {
	s := Summary{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch {
		case !o.OK:
			s.Failed++
		case !o.Redacted:
			s.Succeeded++
			s.Unredacted++
		default:
			s.Succeeded++
		}
	}
	r.Summary = s
}

// ScanHit is one sensitive span found by the scan command.
type ScanHit struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// ScanLine groups the hits of one input line. Line numbers start at 1.
type ScanLine struct {
	Line int       `json:"line"`
	Text string    `json:"text"`
	Hits []ScanHit `json:"hits"`
}

// ScanReport is the result of one scan command. Only lines with hits are
// listed.
type ScanReport struct {
	Lines     []ScanLine `json:"lines"`
	TotalHits int        `json:"totalHits"`
}

// Add records the hits for one line, skipping lines without hits.
func (r *ScanReport) Add(lineNo int, text string, hits []detect.Hit) {
	if len(hits) == 0 {
		return
	}
	sl := ScanLine{Line: lineNo, Text: text, Hits: make([]ScanHit, 0, len(hits))}
	for _, h := range hits {
		sl.Hits = append(sl.Hits, ScanHit{
			Kind:  h.Kind.String(),
			Start: h.Span.Start,
			End:   h.Span.End,
			Text:  h.Text(text),
		})
	}
	r.Lines = append(r.Lines, sl)
	r.TotalHits += len(hits)
}
