package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter outputs reports as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) WriteReport(w io.Writer, report *Report) error {
	return writeJSON(w, report)
}

func (j *JSONWriter) WriteScan(w io.Writer, report *ScanReport) error {
	if report.Lines == nil {
		report.Lines = []ScanLine{}
	}
	return writeJSON(w, report)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
