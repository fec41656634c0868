package redact

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Mode selects the obscuring filter.
type Mode string

const (
	ModeBlur     Mode = "blur"
	ModePixelate Mode = "pixelate"
)

// Style is a filter mode plus its strength: the blur radius for ModeBlur or
// the block size in pixels for ModePixelate.
type Style struct {
	Mode   Mode    `json:"mode"`
	Amount float64 `json:"amount"`
}

// Blur returns a Gaussian blur style with the given radius.
func Blur(radius float64) Style { return Style{Mode: ModeBlur, Amount: radius} }

// Pixelate returns a block pixelation style with the given block size.
func Pixelate(scale float64) Style { return Style{Mode: ModePixelate, Amount: scale} }

// ParseStyle builds a Style from a mode name and the per-mode amounts.
func ParseStyle(mode string, blurRadius, pixelScale float64) (Style, error) {
	switch Mode(mode) {
	case ModeBlur, "":
		return Blur(blurRadius), nil
	case ModePixelate:
		return Pixelate(pixelScale), nil
	default:
		return Style{}, fmt.Errorf("unknown redaction style %q (want blur or pixelate)", mode)
	}
}

func (s Style) String() string {
	return fmt.Sprintf("%s(%g)", s.Mode, s.Amount)
}

type filter func(img image.Image) *image.NRGBA

func newFilter(s Style) (filter, error) {
	if !(s.Amount > 0) || math.IsInf(s.Amount, 0) {
		return nil, fmt.Errorf("%w: %s amount must be a positive number, got %g", ErrFilterCreation, s.Mode, s.Amount)
	}
	switch s.Mode {
	case ModeBlur:
		sigma := s.Amount
		return func(img image.Image) *image.NRGBA {
			return imaging.Blur(img, sigma)
		}, nil
	case ModePixelate:
		block := s.Amount
		return func(img image.Image) *image.NRGBA {
			return pixelate(img, block)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrFilterCreation, s.Mode)
	}
}

// pixelate averages the image down by block and scales it back up with
// nearest-neighbour sampling, which leaves flat blocks of roughly block px.
func pixelate(img image.Image, block float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	sw := max(1, int(math.Round(float64(w)/block)))
	sh := max(1, int(math.Round(float64(h)/block)))
	small := imaging.Resize(img, sw, sh, imaging.Box)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}
