package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/scrub/internal/cache"
	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/detect"
	"github.com/dshills/scrub/internal/ner"
	"github.com/dshills/scrub/internal/ocr"
	"github.com/dshills/scrub/internal/output"
	"github.com/dshills/scrub/internal/pipeline"
	"github.com/dshills/scrub/internal/redact"
)

// Shared detection flags
var (
	flagTerms   string
	flagFormat  string
	flagOut     string
	flagNERURL  string
	flagNoCache bool
)

// Redact flags
var (
	flagInPlace     bool
	flagStyle       string
	flagBlurRadius  float64
	flagPixelScale  float64
	flagPadding     float64
	flagConcurrency int
	flagTimeout     float64
	flagOCRMode     string
	flagOCRURL      string
)

func addDetectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagTerms, "terms", "", "Extra custom terms to redact (comma-separated)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Report file path (default: stdout)")
	cmd.Flags().StringVar(&flagNERURL, "ner-url", "", "Enable the named-entity sidecar at this URL")
}

func addRedactFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagInPlace, "in-place", false, "Overwrite each image instead of writing redact-<name>")
	cmd.Flags().StringVar(&flagStyle, "style", "", "Redaction style (blur, pixelate)")
	cmd.Flags().Float64Var(&flagBlurRadius, "blur-radius", 0, "Blur radius in pixels")
	cmd.Flags().Float64Var(&flagPixelScale, "pixel-scale", 0, "Pixelation block size in pixels")
	cmd.Flags().Float64Var(&flagPadding, "padding", -1, "Padding around each detected span in pixels (negative uses the configured value)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Number of images processed at once")
	cmd.Flags().Float64Var(&flagTimeout, "timeout", 0, "Per-image timeout in seconds")
	cmd.Flags().StringVar(&flagOCRMode, "ocr", "", "Text recognizer (sidecar, http)")
	cmd.Flags().StringVar(&flagOCRURL, "ocr-url", "", "Recognizer endpoint for --ocr http")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the recognizer cache")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagTerms != "" {
		m["customTerms"] = flagTerms
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagNERURL != "" {
		m["ner.url"] = flagNERURL
		m["ner.enabled"] = "true"
	}
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	if flagStyle != "" {
		m["style"] = flagStyle
	}
	if flagBlurRadius > 0 {
		m["blurRadius"] = formatFloat(flagBlurRadius)
	}
	if flagPixelScale > 0 {
		m["pixelScale"] = formatFloat(flagPixelScale)
	}
	if flagPadding >= 0 {
		m["padding"] = formatFloat(flagPadding)
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagTimeout > 0 {
		m["limits.timeoutSeconds"] = formatFloat(flagTimeout)
	}
	if flagOCRMode != "" {
		m["ocr.mode"] = flagOCRMode
	}
	if flagOCRURL != "" {
		m["ocr.url"] = flagOCRURL
	}
	return m
}

// dedupePaths drops repeated paths so that no image is processed by two
// workers at once. Order of first appearance is kept.
func dedupePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func buildScanner(cfg config.Config, logger *slog.Logger) *detect.Scanner {
	var classifiers []detect.Classifier
	if cfg.NER.Enabled {
		classifiers = append(classifiers, ner.New(cfg.NER.URL, ner.Options{
			RatePerSecond: cfg.NER.RatePerSecond,
			Logger:        logger,
		}))
	}
	return detect.NewScanner(cfg.CustomTerms, logger, classifiers...)
}

type recognizer interface {
	pipeline.Recognizer
	pipeline.RegionSource
}

func buildRecognizer(cfg config.Config, logger *slog.Logger) (recognizer, error) {
	switch cfg.OCR.Mode {
	case config.OCRModeHTTP:
		c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		return ocr.NewClient(cfg.OCR.URL, ocr.ClientOptions{
			Timeout:       time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
			RatePerSecond: cfg.OCR.RatePerSecond,
			Burst:         cfg.OCR.Burst,
			Cache:         c,
			Logger:        logger,
		}), nil
	default:
		return ocr.NewSidecar(cfg.OCR.SidecarSuffix), nil
	}
}

func buildPipeline(cfg config.Config, logger *slog.Logger) (*pipeline.Pipeline, redact.Style, error) {
	style, err := redact.ParseStyle(cfg.Style, cfg.BlurRadius, cfg.PixelScale)
	if err != nil {
		return nil, redact.Style{}, err
	}
	rec, err := buildRecognizer(cfg, logger)
	if err != nil {
		return nil, redact.Style{}, err
	}
	p := pipeline.New(rec, buildScanner(cfg, logger), pipeline.Options{
		Limits: pipeline.Limits{
			Timeout:         cfg.Limits.Timeout(),
			MaxDimension:    cfg.Limits.MaxDimension,
			DownscaleFactor: cfg.Limits.DownscaleFactor,
			MaxNameAttempts: cfg.Limits.MaxNameAttempts,
		},
		Style:       style,
		Padding:     cfg.Padding,
		MaskPadding: cfg.MaskPadding,
		Extra:       []pipeline.RegionSource{rec},
		Logger:      logger,
	})
	return p, style, nil
}

// redactAll runs the pipeline over paths with at most concurrency images in
// flight. Failures are recorded per image and never cancel the batch.
func redactAll(ctx context.Context, p *pipeline.Pipeline, paths []string, inPlace bool, concurrency int) []output.Outcome {
	outcomes := make([]output.Outcome, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			var (
				res *pipeline.Result
				err error
			)
			if inPlace {
				res, err = p.RedactInPlace(ctx, path)
			} else {
				res, err = p.RedactAndSave(ctx, path)
			}
			outcomes[i] = output.NewOutcome(path, res, err)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func runRedact(ctx context.Context, paths []string, cfg config.Config) {
	start := time.Now()
	logger := slog.Default()

	p, style, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	mode := "copy"
	if flagInPlace {
		mode = "in-place"
	}
	report := &output.Report{
		Tool:     "scrub",
		Version:  version,
		Mode:     mode,
		Style:    style.String(),
		Outcomes: redactAll(ctx, p, dedupePaths(paths), flagInPlace, cfg.Concurrency),
	}
	report.Summarize()
	report.TotalMs = time.Since(start).Milliseconds()

	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	if err := output.WriteTo(flagOut, func(w io.Writer) error { return writer.WriteReport(w, report) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if report.Summary.Failed > 0 {
		exitCode = ExitFailures
	}
}

var redactCmd = &cobra.Command{
	Use:   "redact <image>...",
	Short: "Redact sensitive text in screenshots",
	Long: `Redact runs text recognition on each image, detects sensitive text and
blurs or pixelates it. By default the result is written next to the source as
redact-<name>.<ext>; --in-place replaces the source atomically instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		runRedact(cmd.Context(), args, cfg)
		return nil
	},
}

func init() {
	addDetectFlags(redactCmd)
	addRedactFlags(redactCmd)
}
