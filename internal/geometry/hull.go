package geometry

import "math"

// ConvexHull computes the convex hull of a point set using the monotone
// chain algorithm, returned in CCW order without repeating the first point.
func ConvexHull(pts []Point) []Point {
	n := len(pts)
	if n <= 1 {
		return append([]Point(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortPoints(p)
	p = removeDuplicatePoints(p)
	if len(p) <= 1 {
		return p
	}
	lower := buildHalfHull(p, false)
	upper := buildHalfHull(p, true)
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func sortPoints(p []Point) {
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && (p[j].X > v.X || (p[j].X == v.X && p[j].Y > v.Y)) {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

func removeDuplicatePoints(p []Point) []Point {
	q := p[:0]
	var last Point
	hasLast := false
	for _, pt := range p {
		if !hasLast || pt.X != last.X || pt.Y != last.Y {
			q = append(q, pt)
			last = pt
			hasLast = true
		}
	}
	return q
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// buildHalfHull builds the lower hull (reversed=false) or upper hull
// (reversed=true) of a point set pre-sorted by (X,Y).
func buildHalfHull(p []Point, reversed bool) []Point {
	half := make([]Point, 0, len(p))
	step := func(pt Point) {
		for len(half) >= 2 && cross(half[len(half)-2], half[len(half)-1], pt) <= 0 {
			half = half[:len(half)-1]
		}
		half = append(half, pt)
	}
	if reversed {
		for i := len(p) - 1; i >= 0; i-- {
			step(p[i])
		}
	} else {
		for _, pt := range p {
			step(pt)
		}
	}
	return half
}

// MinimumAreaRectangle computes the minimum-area rectangle enclosing a
// point set via rotating calipers over the convex hull, returned in the
// center/extent/angle form the spec's RotatedRectangle uses.
func MinimumAreaRectangle(pts []Point) RotatedRect {
	if len(pts) == 0 {
		return RotatedRect{}
	}
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{CX: hull[0].X, CY: hull[0].Y, W: 1, H: 1}
	case 2:
		return rectForSegment(hull[0], hull[1])
	default:
		corners := rotatingCalipersRect(hull)
		return rotatedRectFromCorners(corners)
	}
}

func rectForSegment(a, b Point) RotatedRect {
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	cx, cy := (a.X+b.X)/2, (a.Y+b.Y)/2
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	return RotatedRect{CX: cx, CY: cy, W: length, H: 1, AngleRad: angle}
}

// rotatingCalipersRect evaluates, for each hull edge, the area of the
// bounding rectangle aligned to that edge, and keeps the minimum. Grounded
// on the teacher's findMinimumAreaRectangle in internal/utils/polygon.go.
func rotatingCalipersRect(hull []Point) [4]Point {
	bestArea := math.Inf(1)
	var bestU, bestV Point
	var bestMinS, bestMaxS, bestMinT, bestMaxT float64
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		vx, vy := -uy, ux
		minS, maxS := math.Inf(1), math.Inf(-1)
		minT, maxT := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			s := p.X*ux + p.Y*uy
			t := p.X*vx + p.Y*vy
			minS = math.Min(minS, s)
			maxS = math.Max(maxS, s)
			minT = math.Min(minT, t)
			maxT = math.Max(maxT, t)
		}
		area := (maxS - minS) * (maxT - minT)
		if area < bestArea {
			bestArea = area
			bestU, bestV = Point{ux, uy}, Point{vx, vy}
			bestMinS, bestMaxS, bestMinT, bestMaxT = minS, maxS, minT, maxT
		}
	}
	corner := func(s, t float64) Point {
		return Point{X: bestU.X*s + bestV.X*t, Y: bestU.Y*s + bestV.Y*t}
	}
	return [4]Point{
		corner(bestMinS, bestMinT),
		corner(bestMaxS, bestMinT),
		corner(bestMaxS, bestMaxT),
		corner(bestMinS, bestMaxT),
	}
}
