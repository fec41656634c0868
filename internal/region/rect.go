package region

import "math"

// Rect is an axis-aligned rectangle in image pixel space with a top-left
// origin. Width and height are never negative for rectangles produced by
// this package.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X: x,
		Y: y,
		W: math.Max(r.MaxX(), o.MaxX()) - x,
		H: math.Max(r.MaxY(), o.MaxY()) - y,
	}
}

// Intersect returns the overlap of r and o, or the zero Rect if they do not
// overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inflate grows r by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Scale multiplies every coordinate by sx horizontally and sy vertically.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, W: r.W * sx, H: r.H * sy}
}

// near reports whether r and o overlap or are separated by at most gap on
// both axes.
func (r Rect) near(o Rect, gap float64) bool {
	return r.X <= o.MaxX()+gap && o.X <= r.MaxX()+gap &&
		r.Y <= o.MaxY()+gap && o.Y <= r.MaxY()+gap
}

// Clamp intersects every rectangle with the image area [0,width)x[0,height)
// and drops the ones left empty.
func Clamp(rects []Rect, width, height float64) []Rect {
	bounds := Rect{W: width, H: height}
	var out []Rect
	for _, r := range rects {
		if c := r.Intersect(bounds); !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}
