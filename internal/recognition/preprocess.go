// Package recognition implements the SVTR-class CTC text recognizer
// stage: cropping each detected region by bilinear-sampling along its own
// rotated rectangle's local axes (never re-rotating the whole source
// image), resizing aspect-preserving into the model's fixed input, and
// decoding the resulting logits. Grounded on the teacher's
// internal/recognizer package for the surrounding session/engine
// plumbing; the per-rectangle affine crop itself has no teacher analog
// (internal/utils/image_utils.go's CropImageRect only handles
// axis-aligned boxes), so it is implemented directly here with explicit
// bilinear interpolation — the same sampling PaddleOCR-style recognizers
// apply via a perspective warp, expressed in plain Go rather than through
// golang.org/x/image/draw's affine Transform, whose destination/source
// matrix convention is easy to get backwards without the ability to run
// the code; see DESIGN.md.
package recognition

import (
	"image"
	"image/color"
	"math"

	"github.com/speedreader/speedreader/internal/geometry"
	"github.com/speedreader/speedreader/internal/kernel"
)

// TargetHeight and TargetWidth are SVTR's fixed recognition input
// dimensions.
const (
	TargetHeight = 48
	TargetWidth  = 160
)

// neutralPixel is the padding value for columns beyond the aspect-resized
// content, matching the mid-gray neutral point of the (p/127.5)-1
// normalization (0 after normalization).
const neutralPixel = 127.5

// CropRotated samples img along the local axes of rect into a width x
// height RGB raster, using bilinear interpolation. The rectangle's local
// u-axis (width direction) runs from corner 0 to corner 1; the v-axis
// (height direction) runs from corner 0 to corner 3, per
// geometry.RotatedRect.Corners' ordering.
func CropRotated(img image.Image, rect geometry.RotatedRect, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if rect.W <= 0 || rect.H <= 0 || width <= 0 || height <= 0 {
		return out
	}
	corners := rect.Corners()
	c0, c1, c3 := corners[0], corners[1], corners[3]

	for dy := 0; dy < height; dy++ {
		v := float64(dy) / float64(height)
		for dx := 0; dx < width; dx++ {
			u := float64(dx) / float64(width)
			sx := c0.X + u*(c1.X-c0.X) + v*(c3.X-c0.X)
			sy := c0.Y + u*(c1.Y-c0.Y) + v*(c3.Y-c0.Y)
			out.Set(dx, dy, bilinearSample(img, sx, sy))
		}
	}
	return out
}

func bilinearSample(img image.Image, x, y float64) color.RGBA {
	bounds := img.Bounds()
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	get := func(px, py int) (float64, float64, float64, float64) {
		px = clampInt(px, bounds.Min.X, bounds.Max.X-1)
		py = clampInt(py, bounds.Min.Y, bounds.Max.Y-1)
		r, g, b, a := img.At(px, py).RGBA()
		return float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)
	}

	r00, g00, b00, a00 := get(x0, y0)
	r10, g10, b10, a10 := get(x0+1, y0)
	r01, g01, b01, a01 := get(x0, y0+1)
	r11, g11, b11, a11 := get(x0+1, y0+1)

	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	top := func(a00, a10 float64) float64 { return lerp(a00, a10, fx) }
	bot := func(a01, a11 float64) float64 { return lerp(a01, a11, fx) }
	final := func(a00, a10, a01, a11 float64) float64 { return lerp(top(a00, a10), bot(a01, a11), fy) }

	return color.RGBA{
		R: uint8(clampF(final(r00, r10, r01, r11), 0, 255)),
		G: uint8(clampF(final(g00, g10, g01, g11), 0, 255)),
		B: uint8(clampF(final(b00, b10, b01, b11), 0, 255)),
		A: uint8(clampF(final(a00, a10, a01, a11), 0, 255)),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Preprocess aspect-preserving-resizes a cropped region image into
// TargetWidth x TargetHeight (padding any leftover columns with the
// neutral gray value), then normalizes to (p/127.5)-1 in NCHW layout.
func Preprocess(region image.Image) kernel.Buffer {
	bounds := region.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return kernel.Buffer{Data: make([]float32, 3*TargetHeight*TargetWidth), Shape: []int{1, 3, TargetHeight, TargetWidth}}
	}

	scale := float64(TargetHeight) / float64(srcH)
	resizedW := int(float64(srcW) * scale)
	if resizedW > TargetWidth {
		resizedW = TargetWidth
	}
	if resizedW < 1 {
		resizedW = 1
	}

	data := make([]float32, 3*TargetHeight*TargetWidth)
	for i := range data {
		data[i] = (neutralPixel/127.5 - 1)
	}

	for dy := 0; dy < TargetHeight; dy++ {
		sy := float64(dy) / float64(TargetHeight) * float64(srcH)
		for dx := 0; dx < resizedW; dx++ {
			sx := float64(dx) / float64(resizedW) * float64(srcW)
			c := bilinearSample(region, sx+float64(bounds.Min.X), sy+float64(bounds.Min.Y))
			rgb := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
			for ch := 0; ch < 3; ch++ {
				idx := ch*TargetHeight*TargetWidth + dy*TargetWidth + dx
				data[idx] = float32(rgb[ch]/127.5 - 1)
			}
		}
	}

	return kernel.Buffer{Data: data, Shape: []int{1, 3, TargetHeight, TargetWidth}}
}
