package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dshills/scrub/internal/detect"
	"github.com/dshills/scrub/internal/redact"
	"github.com/dshills/scrub/internal/region"
)

// Recognizer extracts text lines, in pixel coordinates of img (top-left
// origin), from an image. path is the file img was loaded from.
type Recognizer interface {
	Recognize(ctx context.Context, path string, img image.Image) ([]region.Line, error)
}

// RegionSource contributes extra regions, such as faces or barcodes, that
// are redacted regardless of text content.
type RegionSource interface {
	Regions(ctx context.Context, path string, img image.Image) ([]region.Rect, error)
}

// LineScanner finds sensitive spans in one line of text.
type LineScanner interface {
	Scan(ctx context.Context, line string) []detect.Hit
}

// Limits bounds the work done per image.
type Limits struct {
	Timeout         time.Duration
	MaxDimension    int
	DownscaleFactor float64
	MaxNameAttempts int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Timeout:         15 * time.Second,
		MaxDimension:    4000,
		DownscaleFactor: 1.2,
		MaxNameAttempts: 100,
	}
}

// Options configures a Pipeline. Zero fields take defaults, except the two
// paddings: zero disables them and a negative value selects the default.
type Options struct {
	Limits      Limits
	Style       redact.Style
	Padding     float64
	MaskPadding int
	JPEGQuality int
	Extra       []RegionSource
	Logger      *slog.Logger
}

// Result describes a successful invocation.
type Result struct {
	// Path is the file that was written.
	Path string
	// Redacted is false when the timeout fired in copy mode and the saved
	// copy is the unmodified image.
	Redacted    bool
	Diagnostics Diagnostics
}

// Pipeline is safe for concurrent use on distinct files.
type Pipeline struct {
	rec      Recognizer
	scanner  LineScanner
	redactor *redact.Redactor
	extra    []RegionSource
	limits   Limits
	style    redact.Style
	padding  float64
	quality  int
	logger   *slog.Logger
}

// New builds a pipeline from a recognizer and a line scanner.
func New(rec Recognizer, scanner LineScanner, opts Options) *Pipeline {
	def := DefaultLimits()
	l := opts.Limits
	if l.Timeout <= 0 {
		l.Timeout = def.Timeout
	}
	if l.MaxDimension <= 0 {
		l.MaxDimension = def.MaxDimension
	}
	if l.DownscaleFactor <= 1 {
		l.DownscaleFactor = def.DownscaleFactor
	}
	if l.MaxNameAttempts <= 0 {
		l.MaxNameAttempts = def.MaxNameAttempts
	}
	style := opts.Style
	if style.Mode == "" {
		style = redact.Blur(20)
	}
	padding := opts.Padding
	if padding < 0 {
		padding = region.DefaultPadding
	}
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rec:      rec,
		scanner:  scanner,
		redactor: redact.New(opts.MaskPadding),
		extra:    opts.Extra,
		limits:   l,
		style:    style,
		padding:  padding,
		quality:  quality,
		logger:   logger,
	}
}

// RedactInPlace redacts path and atomically replaces it. On timeout the
// original file is left untouched and ErrTimedOut is returned.
func (p *Pipeline) RedactInPlace(ctx context.Context, path string) (*Result, error) {
	return p.run(ctx, path, true)
}

// RedactAndSave redacts path and writes the result to a new sibling file.
// On timeout the unredacted image is saved under the same naming scheme.
func (p *Pipeline) RedactAndSave(ctx context.Context, path string) (*Result, error) {
	return p.run(ctx, path, false)
}

func (p *Pipeline) run(ctx context.Context, path string, inPlace bool) (res *Result, err error) {
	start := time.Now()
	diag := Diagnostics{Input: path, InPlace: inPlace}
	defer func() {
		diag.Timing.TotalMs = time.Since(start).Milliseconds()
		if res != nil {
			res.Diagnostics = diag
		}
		diag.log(p.logger, err)
	}()

	src, err := imaging.Open(path)
	if err != nil {
		return nil, newError(KindInvalidImage, path, err)
	}
	if src.Bounds().Empty() {
		return nil, newError(KindInvalidImage, path, errors.New("empty image"))
	}
	format := formatOf(path)
	diag.Format = formatName(format)

	if err := checkWritable(path); err != nil {
		return nil, newError(KindReadOnlyDirectory, path, err)
	}

	work := src
	if scaled, ok := downscale(src, p.limits); ok {
		work = scaled
		diag.Downscaled = true
	}

	out, stage, err := p.race(ctx, path, work)
	if errors.Is(err, errDeadline) {
		diag.TimedOut = true
		if inPlace {
			return nil, newError(KindTimedOut, path, nil)
		}
		return p.save(&diag, src, path, format, false, false)
	}
	if err != nil {
		return nil, err
	}
	diag.applyStage(stage)
	return p.save(&diag, out, path, format, inPlace, true)
}

func (p *Pipeline) save(diag *Diagnostics, img image.Image, path string, format imaging.Format, inPlace, redacted bool) (*Result, error) {
	t := time.Now()
	var (
		dst string
		err error
	)
	if inPlace {
		dst = path
		err = writeAtomic(path, img, format, p.quality)
	} else {
		dst, err = saveCopy(img, path, format, p.quality, p.limits.MaxNameAttempts)
	}
	diag.Timing.SaveMs = time.Since(t).Milliseconds()
	if err != nil {
		return nil, newError(KindFileWriteFailed, path, err)
	}
	diag.Output = dst
	diag.Redacted = redacted
	return &Result{Path: dst, Redacted: redacted}, nil
}

var errDeadline = errors.New("deadline exceeded")

type stageResult struct {
	img  image.Image
	diag stageDiagnostics
	err  error
}

// race runs detection and redaction on a goroutine and returns whichever
// finishes first: the work or the timeout. The goroutine only writes to its
// own stageResult, so a late finisher cannot affect the caller.
func (p *Pipeline) race(ctx context.Context, path string, img image.Image) (image.Image, stageDiagnostics, error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, p.limits.Timeout)
	defer cancel()

	done := make(chan stageResult, 1)
	go func() { done <- p.process(ctx, path, img) }()

	select {
	case r := <-done:
		if r.err != nil && parent.Err() == nil && errors.Is(r.err, context.DeadlineExceeded) {
			return nil, stageDiagnostics{}, errDeadline
		}
		return r.img, r.diag, r.err
	case <-ctx.Done():
		if parent.Err() != nil {
			return nil, stageDiagnostics{}, fmt.Errorf("%s: %w", path, parent.Err())
		}
		return nil, stageDiagnostics{}, errDeadline
	}
}

func (p *Pipeline) process(ctx context.Context, path string, img image.Image) stageResult {
	var d stageDiagnostics

	t := time.Now()
	lines, err := p.rec.Recognize(ctx, path, img)
	d.ocr = time.Since(t)
	if err != nil {
		if ctx.Err() != nil {
			return stageResult{err: ctx.Err()}
		}
		return stageResult{err: newError(KindDetectionFailed, path, err)}
	}
	d.lines = len(lines)

	t = time.Now()
	hits := make([][]detect.Hit, len(lines))
	for i, l := range lines {
		if err := ctx.Err(); err != nil {
			return stageResult{err: err}
		}
		hits[i] = p.scanner.Scan(ctx, l.Text)
		d.hits += len(hits[i])
	}
	d.detection = time.Since(t)

	t = time.Now()
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	regions := region.Build(lines, hits, p.padding)
	for _, src := range p.extra {
		extra, err := src.Regions(ctx, path, img)
		if err != nil {
			p.logger.Warn("pipeline: region source failed", "path", path, "err", err)
			continue
		}
		regions = append(regions, extra...)
	}
	regions = region.Merge(region.Clamp(regions, w, h), region.MergeGap)
	d.regions = len(regions)
	d.regionMerge = time.Since(t)

	t = time.Now()
	out, err := p.redactor.Redact(img, regions, p.style)
	d.redact = time.Since(t)
	if err != nil {
		return stageResult{err: redactError(path, err)}
	}
	return stageResult{img: out, diag: d}
}

func redactError(path string, err error) error {
	switch {
	case errors.Is(err, redact.ErrInvalidImage):
		return newError(KindInvalidImage, path, err)
	case errors.Is(err, redact.ErrFilterCreation):
		return newError(KindFilterCreationFailed, path, err)
	case errors.Is(err, redact.ErrFilterProcessing):
		return newError(KindFilterProcessingFailed, path, err)
	default:
		return newError(KindImageConversionFailed, path, err)
	}
}

// downscale shrinks img by the configured factor when either side exceeds
// the maximum dimension.
func downscale(img image.Image, l Limits) (image.Image, bool) {
	b := img.Bounds()
	if b.Dx() <= l.MaxDimension && b.Dy() <= l.MaxDimension {
		return img, false
	}
	w := int(math.Round(float64(b.Dx()) / l.DownscaleFactor))
	h := int(math.Round(float64(b.Dy()) / l.DownscaleFactor))
	return imaging.Resize(img, max(w, 1), max(h, 1), imaging.Lanczos), true
}
