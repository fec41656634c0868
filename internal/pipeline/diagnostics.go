package pipeline

import (
	"log/slog"
	"time"
)

// Timing holds per-stage durations in milliseconds.
type Timing struct {
	OCRMs       int64 `json:"ocrMs"`
	DetectionMs int64 `json:"detectionMs"`
	RegionMs    int64 `json:"regionMs"`
	RedactionMs int64 `json:"redactionMs"`
	SaveMs      int64 `json:"saveMs"`
	TotalMs     int64 `json:"totalMs"`
}

// Diagnostics records what one invocation did. A fresh value is created per
// invocation and logged when it finishes; nothing is persisted.
type Diagnostics struct {
	Input      string `json:"input"`
	Output     string `json:"output,omitempty"`
	Format     string `json:"format"`
	InPlace    bool   `json:"inPlace"`
	Lines      int    `json:"lines"`
	Hits       int    `json:"hits"`
	Regions    int    `json:"regions"`
	Downscaled bool   `json:"downscaled"`
	TimedOut   bool   `json:"timedOut"`
	Redacted   bool   `json:"redacted"`
	Timing     Timing `json:"timing"`
}

// stageDiagnostics is filled by the detection goroutine and only copied into
// Diagnostics when that goroutine wins the race.
type stageDiagnostics struct {
	lines, hits, regions                int
	ocr, detection, regionMerge, redact time.Duration
}

func (d *Diagnostics) applyStage(s stageDiagnostics) {
	d.Lines = s.lines
	d.Hits = s.hits
	d.Regions = s.regions
	d.Timing.OCRMs = s.ocr.Milliseconds()
	d.Timing.DetectionMs = s.detection.Milliseconds()
	d.Timing.RegionMs = s.regionMerge.Milliseconds()
	d.Timing.RedactionMs = s.redact.Milliseconds()
}

func (d Diagnostics) log(logger *slog.Logger, err error) {
	attrs := []any{
		"input", d.Input,
		"output", d.Output,
		"format", d.Format,
		"inPlace", d.InPlace,
		"lines", d.Lines,
		"hits", d.Hits,
		"regions", d.Regions,
		"downscaled", d.Downscaled,
		"timedOut", d.TimedOut,
		"redacted", d.Redacted,
		"ocrMs", d.Timing.OCRMs,
		"detectionMs", d.Timing.DetectionMs,
		"regionMs", d.Timing.RegionMs,
		"redactionMs", d.Timing.RedactionMs,
		"saveMs", d.Timing.SaveMs,
		"totalMs", d.Timing.TotalMs,
	}
	if err != nil {
		logger.Warn("pipeline: redaction failed", append(attrs, "err", err)...)
		return
	}
	logger.Info("pipeline: redaction finished", attrs...)
}
