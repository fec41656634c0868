package redact

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/dshills/scrub/internal/region"
)

// DefaultMaskPadding is the extra margin, in pixels, added around every
// region when the mask is built. It is independent of the region builder's
// own padding.
const DefaultMaskPadding = 16

var (
	ErrInvalidImage     = errors.New("invalid source image")
	ErrFilterCreation   = errors.New("filter creation failed")
	ErrFilterProcessing = errors.New("filter processing failed")
	ErrConversion       = errors.New("image conversion failed")
)

// Redactor applies a filter to masked regions of an image. It holds no
// mutable state and may be shared across goroutines.
type Redactor struct {
	maskPadding int
}

// New creates a Redactor. A negative maskPadding means DefaultMaskPadding.
func New(maskPadding int) *Redactor {
	if maskPadding < 0 {
		maskPadding = DefaultMaskPadding
	}
	return &Redactor{maskPadding: maskPadding}
}

// Redact returns a copy of img with every region obscured by style. Regions
// are in pixel space relative to the image's top-left corner. With no
// regions the input image is returned as is.
func (r *Redactor) Redact(img image.Image, regions []region.Rect, style Style) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}
	if len(regions) == 0 {
		return img, nil
	}
	apply, err := newFilter(style)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	extent := image.Rect(0, 0, w, h)
	rects := pixelRects(regions, extent)
	if len(rects) == 0 {
		return img, nil
	}
	mask := buildMask(extent, rects, r.maskPadding)

	filtered := apply(img)
	if filtered == nil {
		return nil, fmt.Errorf("%w: %s produced no output", ErrFilterProcessing, style)
	}
	// Filters may grow the extent; only the original area is composited.
	if filtered.Bounds().Dx() < w || filtered.Bounds().Dy() < h {
		return nil, fmt.Errorf("%w: %s output is %v, want %dx%d",
			ErrFilterProcessing, style, filtered.Bounds().Size(), w, h)
	}
	filtered = imaging.Crop(filtered, image.Rect(0, 0, w, h))

	out := imaging.Clone(img)
	if out.Bounds().Dx() != w || out.Bounds().Dy() != h {
		return nil, fmt.Errorf("%w: output is %v, want %dx%d", ErrConversion, out.Bounds().Size(), w, h)
	}
	composite(out, filtered, mask)
	return out, nil
}

// pixelRects snaps regions outward to whole pixels and intersects them with
// extent, dropping the ones left empty.
func pixelRects(regions []region.Rect, extent image.Rectangle) []image.Rectangle {
	var out []image.Rectangle
	for _, rg := range regions {
		if rg.Empty() {
			continue
		}
		pr := image.Rect(
			int(math.Floor(rg.X)), int(math.Floor(rg.Y)),
			int(math.Ceil(rg.MaxX())), int(math.Ceil(rg.MaxY())),
		).Intersect(extent)
		if !pr.Empty() {
			out = append(out, pr)
		}
	}
	return out
}

// buildMask returns an alpha mask the size of extent that is opaque inside
// every rectangle grown by pad and transparent elsewhere.
func buildMask(extent image.Rectangle, rects []image.Rectangle, pad int) *image.Alpha {
	mask := image.NewAlpha(extent)
	for _, r := range rects {
		grown := r.Inset(-pad).Intersect(extent)
		for y := grown.Min.Y; y < grown.Max.Y; y++ {
			row := mask.Pix[mask.PixOffset(grown.Min.X, y):mask.PixOffset(grown.Max.X, y)]
			for i := range row {
				row[i] = 0xff
			}
		}
	}
	return mask
}

// composite copies filtered pixels into dst wherever mask is set. Both images
// share the mask's extent with a zero origin.
func composite(dst, filtered *image.NRGBA, mask *image.Alpha) {
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.Pix[mask.PixOffset(x, y)] == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			fi := filtered.PixOffset(x, y)
			copy(dst.Pix[di:di+4], filtered.Pix[fi:fi+4])
		}
	}
}
