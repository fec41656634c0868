package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dshills/scrub/internal/detect"
	"github.com/dshills/scrub/internal/pipeline"
)

func sampleReport() *Report {
	r := &Report{
		Tool:    "scrub",
		Version: "1.0",
		Mode:    "copy",
		Style:   "blur(20)",
		Outcomes: []Outcome{
			NewOutcome("a.png", &pipeline.Result{
				Path:        "redact-a.png",
				Redacted:    true,
				Diagnostics: pipeline.Diagnostics{Input: "a.png", Hits: 2, Regions: 1},
			}, nil),
			NewOutcome("b.png", nil, &pipeline.Error{Kind: pipeline.KindReadOnlyDirectory, Path: "b.png"}),
			NewOutcome("c.png", &pipeline.Result{Path: "redact-c.png"}, nil),
		},
	}
	r.Summarize()
	return r
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.WriteReport(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Tool != "scrub" {
		t.Errorf("Tool = %q, want %q", parsed.Tool, "scrub")
	}
	if len(parsed.Outcomes) != 3 {
		t.Fatalf("Outcomes count = %d, want 3", len(parsed.Outcomes))
	}
	if parsed.Outcomes[1].Kind != "ReadOnlyDirectory" || parsed.Outcomes[1].OK {
		t.Errorf("failed outcome = %+v", parsed.Outcomes[1])
	}
	if parsed.Outcomes[0].Diagnostics == nil || parsed.Outcomes[0].Diagnostics.Hits != 2 {
		t.Errorf("diagnostics = %+v", parsed.Outcomes[0].Diagnostics)
	}
	want := Summary{Total: 3, Succeeded: 2, Failed: 1, Unredacted: 1}
	if parsed.Summary != want {
		t.Errorf("Summary = %+v, want %+v", parsed.Summary, want)
	}
}

func TestJSONWriter_EmptyScan(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).WriteScan(&buf, &ScanReport{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"lines": []`)) {
		t.Errorf("empty scan should encode lines as []: %s", buf.String())
	}
}

func TestScanReport_Add(t *testing.T) {
	line := "mail a@b.com now"
	r := &ScanReport{}
	r.Add(1, "plain", nil)
	r.Add(2, line, []detect.Hit{{Span: detect.Span{Start: 5, End: 12}, Kind: detect.Email}})

	if len(r.Lines) != 1 || r.TotalHits != 1 {
		t.Fatalf("report = %+v", r)
	}
	want := ScanHit{Kind: "email", Start: 5, End: 12, Text: "a@b.com"}
	if got := r.Lines[0].Hits[0]; got != want {
		t.Errorf("hit = %+v, want %+v", got, want)
	}
	if r.Lines[0].Line != 2 {
		t.Errorf("line = %d, want 2", r.Lines[0].Line)
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range []string{"text", "json", ""} {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q): %v", f, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
