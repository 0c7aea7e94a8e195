package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolygonAreaAndPerimeter(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	require.InDelta(t, 100.0, square.AbsArea(), 1e-9)
	require.InDelta(t, 40.0, square.Perimeter(), 1e-9)
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point{{1, 2}, {5, -3}, {0, 7}})
	require.Equal(t, AABB{X: 0, Y: -3, W: 5, H: 10}, box)
}

func TestConvexHullSquareWithInteriorPoint(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}}
	hull := ConvexHull(pts)
	require.Len(t, hull, 4)
}

func TestMinimumAreaRectangleAxisAligned(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 4}, {0, 4}}
	rect := MinimumAreaRectangle(pts)
	require.InDelta(t, 40.0, rect.W*rect.H, 1e-6)
}

func TestMinimumAreaRectangleRotated(t *testing.T) {
	// A square rotated 45 degrees; min-area rect should recover side length.
	var pts []Point
	side := 10.0
	angle := math.Pi / 4
	for _, c := range [][2]float64{{-side / 2, -side / 2}, {side / 2, -side / 2}, {side / 2, side / 2}, {-side / 2, side / 2}} {
		x := c[0]*math.Cos(angle) - c[1]*math.Sin(angle)
		y := c[0]*math.Sin(angle) + c[1]*math.Cos(angle)
		pts = append(pts, Point{X: x, Y: y})
	}
	rect := MinimumAreaRectangle(pts)
	require.InDelta(t, side*side, rect.W*rect.H, 1e-6)
}

func TestSimplifyKeepsEndpoints(t *testing.T) {
	pts := []Point{{0, 0}, {5, 0}, {10, 0}, {10, 10}, {0, 10}}
	out := Simplify(pts, 0.1)
	require.Equal(t, pts[0], out[0])
	require.Equal(t, pts[len(pts)-1], out[len(out)-1])
}

func TestDilateGrowsAreaAndPreservesShape(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	dilated := Dilate(square, 1.5)
	require.Greater(t, dilated.AbsArea(), square.AbsArea())

	// Corners of an axis-aligned square dilate symmetrically.
	box := BoundingBox(dilated)
	require.InDelta(t, box.W, box.H, 1e-6)
}

func TestDilateDegeneratePolygonUnchanged(t *testing.T) {
	line := Polygon{{0, 0}, {1, 0}}
	out := Dilate(line, 1.5)
	require.Equal(t, line, out)
}

func TestAABBIoU(t *testing.T) {
	a := AABB{X: 0, Y: 0, W: 10, H: 10}
	b := AABB{X: 5, Y: 5, W: 10, H: 10}
	iou := a.IoU(b)
	require.InDelta(t, 25.0/175.0, iou, 1e-9)
}

func TestRotatedRectCorners(t *testing.T) {
	r := RotatedRect{CX: 0, CY: 0, W: 4, H: 2, AngleRad: 0}
	c := r.Corners()
	require.InDelta(t, -2, c[0].X, 1e-9)
	require.InDelta(t, -1, c[0].Y, 1e-9)
	require.InDelta(t, 2, c[2].X, 1e-9)
	require.InDelta(t, 1, c[2].Y, 1e-9)
}
