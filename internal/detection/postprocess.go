package detection

import (
	"math"

	"github.com/speedreader/speedreader/internal/boundary"
	"github.com/speedreader/speedreader/internal/geometry"
)

// Config holds the postprocess knobs, matching the spec's defaults but
// left tunable, same as the teacher's detector.Config.DbThresh/etc.
type Config struct {
	// Threshold binarizes the probability map.
	Threshold float32
	// DilationRatio expands each traced polygon back out by
	// area*ratio/perimeter after the model's inherent shrink-map training.
	DilationRatio float64
	// MinPoints discards traced contours with fewer points (degenerate
	// slivers, single pixels).
	MinPoints int
}

// DefaultConfig returns the spec's detection postprocess defaults.
func DefaultConfig() Config {
	return Config{Threshold: 0.2, DilationRatio: 1.5, MinPoints: 4}
}

// Box is one detected text region in three equivalent representations:
// the traced (and dilated) polygon, its minimum-area rotated rectangle,
// and its axis-aligned bounding box — all in original-image coordinates.
type Box struct {
	Polygon geometry.Polygon
	Rotated geometry.RotatedRect
	AABB    geometry.AABB
}

// PostProcess turns a [mapH,mapW] probability map into detected Boxes
// scaled and clamped to an image of size origW x origH.
func PostProcess(prob []float32, mapW, mapH, origW, origH int, cfg Config) []Box {
	mask := boundary.Binarize(prob, mapW, mapH, cfg.Threshold)
	comps, labels := boundary.ConnectedComponents(mask, mapW, mapH)

	// Preprocess resized preserving aspect ratio into the top-left corner
	// of the model's fixed-size canvas and padded the remainder, so a
	// single uniform scale (the larger of the two per-axis ratios) maps
	// model coordinates back without shearing non-square images.
	scale := math.Max(float64(origW)/float64(mapW), float64(origH)/float64(mapH))

	var boxes []Box
	for i, st := range comps {
		label := i + 1
		pts := boundary.Trace(labels, mapW, mapH, label, st)
		if len(pts) < cfg.MinPoints {
			continue
		}

		poly := geometry.Polygon(pts)
		epsilon := math.Max(poly.Perimeter()*0.01, 0.5)
		simplified := geometry.Polygon(geometry.Simplify(pts, epsilon))
		if len(simplified) < cfg.MinPoints {
			continue
		}

		dilated := geometry.Dilate(simplified, cfg.DilationRatio)
		if len(dilated) < cfg.MinPoints {
			continue
		}

		scaled := dilated.Scale(scale, scale).Clamp(float64(origW), float64(origH))
		if len(scaled) < cfg.MinPoints {
			continue
		}

		rotated := geometry.MinimumAreaRectangle(scaled)
		aabb := geometry.BoundingBox(scaled)

		boxes = append(boxes, Box{Polygon: scaled, Rotated: rotated, AABB: aabb})
	}
	return boxes
}
