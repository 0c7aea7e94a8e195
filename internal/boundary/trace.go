package boundary

import "github.com/speedreader/speedreader/internal/geometry"

// clockwiseDX/DY enumerate the 8-neighborhood in clockwise order starting
// East: E, SE, S, SW, W, NW, N, NE.
var clockwiseDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
var clockwiseDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}

func dirIndex(dx, dy int) int {
	for i := range clockwiseDX {
		if clockwiseDX[i] == dx && clockwiseDY[i] == dy {
			return i
		}
	}
	return 0
}

// Trace extracts the outer boundary of one labeled component as an ordered
// polygon using Moore-neighborhood tracing (the standard Suzuki-Abe style
// outer-contour algorithm), restricted to the component's bounding box for
// efficiency. Returns nil if no boundary pixel is found.
func Trace(labels []int, w, h, label int, st Stats) []geometry.Point {
	if label <= 0 || len(labels) != w*h {
		return nil
	}
	idx := func(x, y int) int { return y*w + x }
	inBounds := func(x, y int) bool { return x >= 0 && y >= 0 && x < w && y < h }
	isLabel := func(x, y int) bool {
		return inBounds(x, y) && labels[idx(x, y)] == label
	}
	isBoundary := func(x, y int) bool {
		if !isLabel(x, y) {
			return false
		}
		return !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1)
	}

	sx, sy := -1, -1
	for y := st.MinY; y <= st.MaxY && sx == -1; y++ {
		for x := st.MinX; x <= st.MaxX; x++ {
			if isBoundary(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx == -1 {
		for y := st.MinY; y <= st.MaxY && sy == -1; y++ {
			for x := st.MinX; x <= st.MaxX; x++ {
				if isLabel(x, y) {
					sx, sy = x, y
					break
				}
			}
		}
		if sx == -1 {
			return nil
		}
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy

	pts := make([]geometry.Point, 0, 64)
	push := func(x, y int) {
		p := geometry.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			v1x, v1y := b.X-a.X, b.Y-a.Y
			v2x, v2y := p.X-b.X, p.Y-b.Y
			if v1x*v2y-v1y*v2x == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	push(cx, cy)

	startCx, startCy, startBx, startBy := cx, cy, bx, by
	maxSteps := w*h*4 + 8
	for steps := 0; steps < maxSteps; steps++ {
		dx, dy := bx-cx, by-cy
		start := (dirIndex(dx, dy) + 1) % 8
		found := false
		for k := 0; k < 8; k++ {
			i := (start + k) % 8
			tx, ty := cx+clockwiseDX[i], cy+clockwiseDY[i]
			if isLabel(tx, ty) {
				cx, cy = tx, ty
				if len(pts) == 0 || pts[len(pts)-1].X != float64(cx) || pts[len(pts)-1].Y != float64(cy) {
					push(cx, cy)
				}
				found = true
				break
			}
			bx, by = tx, ty
		}
		if !found {
			break
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	if len(pts) >= 2 && pts[0].X == pts[len(pts)-1].X && pts[0].Y == pts[len(pts)-1].Y {
		pts = pts[:len(pts)-1]
	}
	return pts
}
