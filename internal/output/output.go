package output

import (
	"fmt"
	"io"
	"os"
)

// Writer writes reports in a specific format.
type Writer interface {
	WriteReport(w io.Writer, report *Report) error
	WriteScan(w io.Writer, report *ScanReport) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteTo calls write with the file at outPath, or stdout when outPath is
// empty.
func WriteTo(outPath string, write func(io.Writer) error) error {
	if outPath == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
