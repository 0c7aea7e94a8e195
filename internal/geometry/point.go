// Package geometry implements the polygon, rectangle, and contour math
// shared by the detection and recognition stages: convex hulls, rotating
// calipers, Douglas-Peucker simplification, and area/perimeter polygon
// dilation.
package geometry

import "math"

// Point is a 2D point in image coordinates.
type Point struct {
	X, Y float64
}

// Polygon is an ordered list of vertices, implicitly closed.
type Polygon []Point

// Area returns the polygon's signed area via the shoelace formula.
// Positive for CCW winding, negative for CW.
func (p Polygon) Area() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// AbsArea returns the unsigned area.
func (p Polygon) AbsArea() float64 {
	a := p.Area()
	if a < 0 {
		return -a
	}
	return a
}

// Perimeter returns the sum of edge lengths of the closed polygon.
func (p Polygon) Perimeter() float64 {
	n := len(p)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += math.Hypot(p[j].X-p[i].X, p[j].Y-p[i].Y)
	}
	return sum
}

// Centroid returns the arithmetic mean of the vertices (not the
// area-weighted centroid).
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	var cx, cy float64
	for _, v := range p {
		cx += v.X
		cy += v.Y
	}
	n := float64(len(p))
	return Point{X: cx / n, Y: cy / n}
}

// BoundingBox returns the axis-aligned bounding box of the point set.
func BoundingBox(pts []Point) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return AABB{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Scale multiplies every coordinate by the given factors, used to map a
// polygon traced on a probability map back to the original image size.
func (p Polygon) Scale(sx, sy float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{X: v.X * sx, Y: v.Y * sy}
	}
	return out
}

// Clamp restricts every vertex to the [0,w] x [0,h] rectangle.
func (p Polygon) Clamp(w, h float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		x := math.Min(math.Max(v.X, 0), w)
		y := math.Min(math.Max(v.Y, 0), h)
		out[i] = Point{X: x, Y: y}
	}
	return out
}
