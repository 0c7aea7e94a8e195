package geometry

import "math"

// AABB is an axis-aligned rectangle expressed as origin + extent, matching
// the teacher's utils.Box but stored in the width/height form the
// detection stage emits.
type AABB struct {
	X, Y, W, H float64
}

// MinX, MinY, MaxX, MaxY give the corner coordinates.
func (b AABB) MinX() float64 { return b.X }
func (b AABB) MinY() float64 { return b.Y }
func (b AABB) MaxX() float64 { return b.X + b.W }
func (b AABB) MaxY() float64 { return b.Y + b.H }

// Contains reports whether p lies within the box (inclusive).
func (b AABB) Contains(p Point) bool {
	return p.X >= b.MinX() && p.X <= b.MaxX() && p.Y >= b.MinY() && p.Y <= b.MaxY()
}

// IoU computes intersection-over-union between two axis-aligned boxes.
func (b AABB) IoU(o AABB) float64 {
	ix1 := math.Max(b.MinX(), o.MinX())
	iy1 := math.Max(b.MinY(), o.MinY())
	ix2 := math.Min(b.MaxX(), o.MaxX())
	iy2 := math.Min(b.MaxY(), o.MaxY())
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := b.W*b.H + o.W*o.H - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// RotatedRect is a rectangle parameterized by center, extent, and rotation,
// matching the spec's wire representation rather than the teacher's raw
// 4-corner points.
type RotatedRect struct {
	CX, CY   float64
	W, H     float64
	AngleRad float64
}

// Corners returns the 4 vertices in CCW order starting from the corner at
// angle AngleRad from center, (-W/2,-H/2) in the rectangle's local frame.
func (r RotatedRect) Corners() [4]Point {
	hw, hh := r.W/2, r.H/2
	cosA, sinA := math.Cos(r.AngleRad), math.Sin(r.AngleRad)
	local := [4]Point{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	}
	var out [4]Point
	for i, p := range local {
		out[i] = Point{
			X: r.CX + p.X*cosA - p.Y*sinA,
			Y: r.CY + p.X*sinA + p.Y*cosA,
		}
	}
	return out
}

// Polygon returns the 4 corners as a closed polygon for area/IoU use.
func (r RotatedRect) Polygon() Polygon {
	c := r.Corners()
	return Polygon{c[0], c[1], c[2], c[3]}
}

// AABB returns the axis-aligned bounding box enclosing the rotated rect.
func (r RotatedRect) AABB() AABB {
	return BoundingBox(r.Corners()[:])
}

// rotatedRectFromCorners converts 4 world-space corner points (as returned
// by rotatingCalipersRect, in order c0,c1,c2,c3 where c0-c1 is one side
// and c1-c2 is the perpendicular side) into the center/extent/angle form.
func rotatedRectFromCorners(c [4]Point) RotatedRect {
	cx := (c[0].X + c[1].X + c[2].X + c[3].X) / 4
	cy := (c[0].Y + c[1].Y + c[2].Y + c[3].Y) / 4
	w := math.Hypot(c[1].X-c[0].X, c[1].Y-c[0].Y)
	h := math.Hypot(c[3].X-c[0].X, c[3].Y-c[0].Y)
	angle := math.Atan2(c[1].Y-c[0].Y, c[1].X-c[0].X)
	return RotatedRect{CX: cx, CY: cy, W: w, H: h, AngleRad: angle}
}
