package redact

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/dshills/scrub/internal/region"
)

// checkerboard returns an opaque 1px black/white checkerboard, which any
// blur or pixelation visibly changes.
func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 0xff}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRedact_EmptyRegionsIsIdentity(t *testing.T) {
	src := checkerboard(20, 20)
	got, err := New(DefaultMaskPadding).Redact(src, nil, Blur(5))
	if err != nil {
		t.Fatalf("Redact error: %v", err)
	}
	if got != image.Image(src) {
		t.Error("Redact with no regions should return the input image")
	}
}

func TestRedact_OutsideUnchangedInsideChanged(t *testing.T) {
	styles := []Style{Blur(4), Pixelate(8)}
	for _, style := range styles {
		t.Run(string(style.Mode), func(t *testing.T) {
			src := checkerboard(200, 120)
			rg := region.Rect{X: 80, Y: 40, W: 30, H: 20}
			pad := 10

			out, err := New(pad).Redact(src, []region.Rect{rg}, style)
			if err != nil {
				t.Fatalf("Redact error: %v", err)
			}
			dst, ok := out.(*image.NRGBA)
			if !ok {
				t.Fatalf("Redact returned %T, want *image.NRGBA", out)
			}
			if dst.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", dst.Bounds(), src.Bounds())
			}

			padded := image.Rect(80-pad, 40-pad, 110+pad, 60+pad)
			changedInside := 0
			for y := 0; y < 120; y++ {
				for x := 0; x < 200; x++ {
					p := image.Pt(x, y)
					same := dst.NRGBAAt(x, y) == src.NRGBAAt(x, y)
					if !p.In(padded) && !same {
						t.Fatalf("pixel %v outside the padded region changed", p)
					}
					if p.In(image.Rect(80, 40, 110, 60)) && !same {
						changedInside++
					}
				}
			}
			if changedInside == 0 {
				t.Error("no pixel inside the region changed")
			}
		})
	}
}

func TestRedact_DoesNotMutateSource(t *testing.T) {
	src := checkerboard(40, 40)
	before := append([]uint8(nil), src.Pix...)
	if _, err := New(0).Redact(src, []region.Rect{{X: 5, Y: 5, W: 10, H: 10}}, Blur(3)); err != nil {
		t.Fatalf("Redact error: %v", err)
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("source image was modified")
		}
	}
}

func TestRedact_RegionsOutsideImage(t *testing.T) {
	src := checkerboard(30, 30)
	got, err := New(0).Redact(src, []region.Rect{{X: 100, Y: 100, W: 10, H: 10}}, Blur(3))
	if err != nil {
		t.Fatalf("Redact error: %v", err)
	}
	if got != image.Image(src) {
		t.Error("regions entirely outside the image should leave it untouched")
	}
}

func TestRedact_Errors(t *testing.T) {
	rg := []region.Rect{{X: 1, Y: 1, W: 5, H: 5}}
	tests := []struct {
		name  string
		img   image.Image
		style Style
		want  error
	}{
		{"nil image", nil, Blur(3), ErrInvalidImage},
		{"empty image", image.NewNRGBA(image.Rectangle{}), Blur(3), ErrInvalidImage},
		{"zero radius", checkerboard(10, 10), Blur(0), ErrFilterCreation},
		{"negative scale", checkerboard(10, 10), Pixelate(-2), ErrFilterCreation},
		{"unknown mode", checkerboard(10, 10), Style{Mode: "swirl", Amount: 2}, ErrFilterCreation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(0).Redact(tt.img, rg, tt.style)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("pixelate", 10, 24)
	if err != nil || s != Pixelate(24) {
		t.Errorf("ParseStyle(pixelate) = %v, %v", s, err)
	}
	s, err = ParseStyle("", 10, 24)
	if err != nil || s != Blur(10) {
		t.Errorf("ParseStyle(\"\") = %v, %v", s, err)
	}
	if _, err := ParseStyle("swirl", 10, 24); err == nil {
		t.Error("ParseStyle(swirl) should fail")
	}
}

func TestBuildMask_PaddingClampedToExtent(t *testing.T) {
	extent := image.Rect(0, 0, 20, 20)
	mask := buildMask(extent, []image.Rectangle{image.Rect(0, 0, 2, 2)}, 3)
	if mask.AlphaAt(4, 4).A != 0xff {
		t.Error("padded pixel should be masked")
	}
	if mask.AlphaAt(5, 5).A != 0 {
		t.Error("pixel beyond padding should not be masked")
	}
}
