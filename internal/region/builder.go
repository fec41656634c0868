package region

import (
	"sort"
	"unicode/utf8"

	"github.com/dshills/scrub/internal/detect"
)

const (
	// DefaultPadding compensates for OCR boxes that hug glyphs too tightly.
	DefaultPadding = 6.0

	// MergeGap is the largest gap, in pixels, across which rectangles are
	// merged.
	MergeGap = 4.0
)

// Line is one line of recognised text with its pixel box.
//
// Glyphs, when present, hold one box per rune of Text and enable precise
// span lookup; otherwise span positions are interpolated across Box.
type Line struct {
	Text   string `json:"text"`
	Box    Rect   `json:"box"`
	Glyphs []Rect `json:"glyphs,omitempty"`
}

// PreciseBox returns the union of the glyph boxes covering the byte span sp.
// It reports false when the line has no usable per-glyph geometry.
func (l Line) PreciseBox(sp detect.Span) (Rect, bool) {
	if len(l.Glyphs) == 0 || len(l.Glyphs) != utf8.RuneCountInString(l.Text) {
		return Rect{}, false
	}
	if sp.Start < 0 || sp.End > len(l.Text) || sp.Start >= sp.End {
		return Rect{}, false
	}
	first := utf8.RuneCountInString(l.Text[:sp.Start])
	last := first + utf8.RuneCountInString(l.Text[sp.Start:sp.End])
	box := l.Glyphs[first]
	for _, g := range l.Glyphs[first+1 : last] {
		box = box.Union(g)
	}
	return box, true
}

// ApproximateBox interpolates the byte span sp across the line box in
// proportion to rune offsets. OCR engines rarely lay characters out evenly,
// so this is a best-effort fallback for lines without glyph geometry.
func (l Line) ApproximateBox(sp detect.Span) Rect {
	total := utf8.RuneCountInString(l.Text)
	if total == 0 || sp.Start < 0 || sp.End > len(l.Text) || sp.Start >= sp.End {
		return Rect{}
	}
	start := utf8.RuneCountInString(l.Text[:sp.Start])
	n := utf8.RuneCountInString(l.Text[sp.Start:sp.End])
	return Rect{
		X: l.Box.X + float64(start)/float64(total)*l.Box.W,
		Y: l.Box.Y,
		W: float64(n) / float64(total) * l.Box.W,
		H: l.Box.H,
	}
}

// Build converts hits into merged pixel regions. hits[i] must belong to
// lines[i]; mismatched lengths produce no regions. Each rectangle is grown by
// padding and clamped to its line box before the cross-line merge.
func Build(lines []Line, hits [][]detect.Hit, padding float64) []Rect {
	if len(lines) != len(hits) {
		return nil
	}
	var rects []Rect
	for i, line := range lines {
		for _, h := range MergeHits(hits[i]) {
			box, ok := line.PreciseBox(h.Span)
			if !ok {
				box = line.ApproximateBox(h.Span)
			}
			if box.Empty() {
				continue
			}
			box = box.Inflate(padding).Intersect(line.Box)
			if box.Empty() {
				continue
			}
			rects = append(rects, box)
		}
	}
	return Merge(rects, MergeGap)
}

// MergeHits sorts hits by span start and joins hits whose spans touch or
// overlap into one hit covering their union. When a mention or URL is joined
// with another kind, the other kind wins.
func MergeHits(hits []detect.Hit) []detect.Hit {
	if len(hits) == 0 {
		return nil
	}
	sorted := append([]detect.Hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})
	out := []detect.Hit{sorted[0]}
	for _, h := range sorted[1:] {
		cur := &out[len(out)-1]
		if !cur.Span.Touches(h.Span) {
			out = append(out, h)
			continue
		}
		if h.Span.End > cur.Span.End {
			cur.Span.End = h.Span.End
		}
		cur.Kind = resolveKind(cur.Kind, h.Kind)
	}
	return out
}

func resolveKind(a, b detect.Kind) detect.Kind {
	if lowPriority(a) {
		return b
	}
	return a
}

func lowPriority(k detect.Kind) bool {
	return k.Category == detect.CategoryMention || k.Category == detect.CategoryURL
}

// Merge joins rectangles that overlap or lie within gap pixels of each other
// on both axes into their bounding union. Sweeps over the input sorted by
// left edge repeat until a pass makes no merge, so a rectangle that bridges
// two earlier, separate rectangles pulls all three together.
func Merge(rects []Rect, gap float64) []Rect {
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if !r.Empty() {
			out = append(out, r)
		}
	}
	for {
		sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
		merged := false
		next := make([]Rect, 0, len(out))
		for _, r := range out {
			joined := false
			for i := range next {
				if next[i].near(r, gap) {
					next[i] = next[i].Union(r)
					joined = true
					merged = true
					break
				}
			}
			if !joined {
				next = append(next, r)
			}
		}
		out = next
		if !merged {
			return out
		}
	}
}
