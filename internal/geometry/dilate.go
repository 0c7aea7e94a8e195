package geometry

import "math"

// Dilate expands a polygon outward by an offset derived from its own area
// and perimeter: D = area * ratio / perimeter, the same offset DBNet-style
// detectors use to grow a shrunk text-region polygon back to full size.
// Each vertex is displaced along the average of its two incident edge
// outward normals, scaled so that, for a convex polygon, every edge ends up
// offset by D. Degenerate polygons (zero perimeter) are returned unchanged.
//
// This differs from the teacher's utils.UnclipPolygon, which approximates
// dilation as a uniform scale from the centroid; that approximation grows
// corners more than edges and drifts on elongated quads, so the per-edge
// offset here is used instead, per the spec's explicit area/perimeter
// formula.
func Dilate(poly Polygon, ratio float64) Polygon {
	n := len(poly)
	if n < 3 {
		return append(Polygon(nil), poly...)
	}
	perimeter := poly.Perimeter()
	if perimeter == 0 {
		return append(Polygon(nil), poly...)
	}
	area := poly.AbsArea()
	offset := area * ratio / perimeter

	// Ensure CCW winding so "outward" normals point away from the interior.
	work := poly
	if poly.Area() < 0 {
		work = reverse(poly)
	}

	normals := make([]Point, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx, dy := work[j].X-work[i].X, work[j].Y-work[i].Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			normals[i] = Point{}
			continue
		}
		// Outward normal for a CCW polygon is the edge vector rotated -90deg.
		normals[i] = Point{X: dy / length, Y: -dx / length}
	}

	out := make(Polygon, n)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		nx := (normals[prev].X + normals[i].X) / 2
		ny := (normals[prev].Y + normals[i].Y) / 2
		mag := math.Hypot(nx, ny)
		if mag == 0 {
			out[i] = work[i]
			continue
		}
		// Compensate for the angle between adjacent edges so the offset
		// along the bisector still lands each edge `offset` away.
		scale := offset / (mag * mag)
		out[i] = Point{X: work[i].X + nx*scale, Y: work[i].Y + ny*scale}
	}
	return out
}

func reverse(poly Polygon) Polygon {
	n := len(poly)
	out := make(Polygon, n)
	for i, p := range poly {
		out[n-1-i] = p
	}
	return out
}
