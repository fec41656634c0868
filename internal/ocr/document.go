package ocr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/scrub/internal/region"
)

// Document is the recognizer wire format.
type Document struct {
	Width      float64      `json:"width,omitempty"`
	Height     float64      `json:"height,omitempty"`
	Normalized bool         `json:"normalized,omitempty"`
	Lines      []TextLine   `json:"lines"`
	Regions    []ExtraBlock `json:"regions,omitempty"`
}

// TextLine is one recognized line. Glyphs, when present, hold one box per
// rune of Text.
type TextLine struct {
	Text   string        `json:"text"`
	Box    region.Rect   `json:"box"`
	Glyphs []region.Rect `json:"glyphs,omitempty"`
}

// ExtraBlock is a non-text area to redact.
type ExtraBlock struct {
	Kind string      `json:"kind"`
	Box  region.Rect `json:"box"`
}

// Decode parses and validates a document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding recognition result: %w", err)
	}
	if doc.Width < 0 || doc.Height < 0 {
		return nil, fmt.Errorf("recognition result has negative dimensions")
	}
	return &doc, nil
}

// defaultSize fills a missing width or height.
func (d *Document) defaultSize(width, height int) {
	if d.Width == 0 {
		d.Width = float64(width)
	}
	if d.Height == 0 {
		d.Height = float64(height)
	}
}

// transform maps document coordinates onto an image of the given size.
type transform struct {
	sx, sy     float64
	height     float64
	normalized bool
}

func (d *Document) transform(width, height float64) transform {
	if d.Normalized {
		return transform{sx: width, sy: height, height: height, normalized: true}
	}
	t := transform{sx: 1, sy: 1}
	if d.Width > 0 {
		t.sx = width / d.Width
	}
	if d.Height > 0 {
		t.sy = height / d.Height
	}
	return t
}

func (t transform) apply(r region.Rect) region.Rect {
	if t.normalized {
		return region.Rect{
			X: r.X * t.sx,
			Y: (1 - r.Y - r.H) * t.height,
			W: r.W * t.sx,
			H: r.H * t.height,
		}
	}
	return r.Scale(t.sx, t.sy)
}

// PixelLines returns the document's lines in top-left pixel coordinates of
// an image of the given size. Blank lines are skipped. Glyph lists whose
// length does not match the rune count are dropped so that callers fall
// back to proportional boxes.
func (d *Document) PixelLines(width, height int) []region.Line {
	t := d.transform(float64(width), float64(height))
	lines := make([]region.Line, 0, len(d.Lines))
	for _, l := range d.Lines {
		if strings.TrimSpace(l.Text) == "" || l.Box.Empty() {
			continue
		}
		line := region.Line{Text: l.Text, Box: t.apply(l.Box)}
		if len(l.Glyphs) == len([]rune(l.Text)) {
			line.Glyphs = make([]region.Rect, len(l.Glyphs))
			for i, g := range l.Glyphs {
				line.Glyphs[i] = t.apply(g)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// PixelRegions returns the non-text regions in pixel coordinates.
func (d *Document) PixelRegions(width, height int) []region.Rect {
	t := d.transform(float64(width), float64(height))
	var out []region.Rect
	for _, r := range d.Regions {
		if r.Box.Empty() {
			continue
		}
		out = append(out, t.apply(r.Box))
	}
	return out
}
