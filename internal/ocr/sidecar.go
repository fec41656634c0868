package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/dshills/scrub/internal/region"
)

// SidecarSuffix is appended to the image path to locate its recognition
// result.
const SidecarSuffix = ".json"

// Sidecar reads recognition results written next to each image by an
// external tool.
type Sidecar struct {
	suffix string
}

// NewSidecar returns a Sidecar using suffix, or SidecarSuffix when empty.
func NewSidecar(suffix string) *Sidecar {
	if suffix == "" {
		suffix = SidecarSuffix
	}
	return &Sidecar{suffix: suffix}
}

// Path returns the sidecar location for an image.
func (s *Sidecar) Path(imagePath string) string {
	return imagePath + s.suffix
}

func (s *Sidecar) load(imagePath string) (*Document, error) {
	data, err := os.ReadFile(s.Path(imagePath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no recognition result at %s", s.Path(imagePath))
		}
		return nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if !doc.Normalized && (doc.Width == 0 || doc.Height == 0) {
		// Pixel boxes without dimensions describe the file on disk, which
		// may be larger than the image being processed.
		if w, h, err := fileSize(imagePath); err == nil {
			doc.defaultSize(w, h)
		}
	}
	return doc, nil
}

func fileSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Recognize implements pipeline.Recognizer.
func (s *Sidecar) Recognize(ctx context.Context, path string, img image.Image) ([]region.Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return doc.PixelLines(b.Dx(), b.Dy()), nil
}

// Regions implements pipeline.RegionSource. A missing sidecar yields no
// regions since Recognize already reports it.
func (s *Sidecar) Regions(ctx context.Context, path string, img image.Image) ([]region.Rect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.load(path)
	if err != nil {
		return nil, nil
	}
	b := img.Bounds()
	return doc.PixelRegions(b.Dx(), b.Dy()), nil
}
