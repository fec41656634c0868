package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/output"
)

// scanText runs the detectors over each line read from r.
func scanText(ctx context.Context, r io.Reader, cfg config.Config, logger *slog.Logger) (*output.ScanReport, error) {
	scanner := buildScanner(cfg, logger)
	report := &output.ScanReport{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		report.Add(n, line, scanner.Scan(ctx, line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return report, nil
}

func runScan(ctx context.Context, input io.Reader, cfg config.Config) {
	report, err := scanText(ctx, input, cfg, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	if err := output.WriteTo(flagOut, func(w io.Writer) error { return writer.WriteScan(w, report) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if report.TotalHits > 0 {
		exitCode = ExitFailures
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan [text...]",
	Short: "Report sensitive text without touching any image",
	Long: `Scan runs the detectors over text given as arguments, or over stdin
when no arguments are given, and prints every hit. It exits 1 when anything
sensitive was found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		var input io.Reader = os.Stdin
		if len(args) > 0 {
			input = strings.NewReader(strings.Join(args, " "))
		}
		runScan(cmd.Context(), input, cfg)
		return nil
	},
}

func init() {
	addDetectFlags(scanCmd)
}
