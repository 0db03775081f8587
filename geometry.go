package gglayout

import "math"

// Point is a position in device pixels.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec2 is a displacement in device pixels.
type Vec2 struct {
	X, Y float64
}

// Add returns the sum of two displacements.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Size is a width/height pair in device pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in device pixels.
// Right and Bottom may be +Inf for unconstrained measurement.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// XYWH returns the rectangle with origin (x, y) and the given size.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Size returns the extent of r.
func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return !(r.Right > r.Left) || !(r.Bottom > r.Top)
}

// HasInfinity reports whether any edge is infinite.
func (r Rect) HasInfinity() bool {
	return math.IsInf(r.Left, 0) || math.IsInf(r.Top, 0) ||
		math.IsInf(r.Right, 0) || math.IsInf(r.Bottom, 0)
}

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Inflate returns r grown by dx on the left and right and dy on the top and bottom.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{Left: r.Left - dx, Top: r.Top - dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Intersects reports whether r and o share a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// IntersectsInclusive is like Intersects but treats touching edges as intersecting.
func (r Rect) IntersectsInclusive(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// ScaledSize is a measured size in device pixels together with the scale it
// was measured at. The zero value is the empty sentinel used for cells that
// have not been measured.
type ScaledSize struct {
	Pixels Size
	Scale  float64
	valid  bool
}

// SizeFromPixels creates a measured size.
func SizeFromPixels(w, h, scale float64) ScaledSize {
	return ScaledSize{Pixels: Size{Width: w, Height: h}, Scale: scale, valid: true}
}

// EmptySize returns the empty sentinel for the given scale.
func EmptySize(scale float64) ScaledSize {
	return ScaledSize{Scale: scale}
}

// IsEmpty reports whether s is the empty sentinel.
func (s ScaledSize) IsEmpty() bool { return !s.valid }

// Units returns the size in scale-independent units.
func (s ScaledSize) Units() Size {
	if s.Scale == 0 {
		return s.Pixels
	}
	return Size{Width: s.Pixels.Width / s.Scale, Height: s.Pixels.Height / s.Scale}
}

// Alignment positions a measured child inside its slot along one axis.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignFill
)

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignCenter:
		return "Center"
	case AlignEnd:
		return "End"
	case AlignFill:
		return "Fill"
	default:
		return "Unknown"
	}
}

// arrangeAxis places an extent of length size inside [start, end).
// An infinite end degrades every alignment to Start.
func arrangeAxis(start, end, size float64, a Alignment) (float64, float64) {
	if math.IsInf(end, 1) {
		return start, start + size
	}
	switch a {
	case AlignCenter:
		off := math.Round((end - start - size) / 2)
		return start + off, start + off + size
	case AlignEnd:
		return end - size, end
	case AlignFill:
		return start, end
	default:
		return start, start + size
	}
}

// arrange returns the destination of a child of the given size inside area.
func arrange(area Rect, size Size, h, v Alignment) Rect {
	l, r := arrangeAxis(area.Left, area.Right, size.Width, h)
	t, b := arrangeAxis(area.Top, area.Bottom, size.Height, v)
	return Rect{Left: l, Top: t, Right: r, Bottom: b}
}
