// Package detection implements the DBNet-class text detector stage:
// preprocessing an image to the model's fixed input size, running it
// through the inference engine, and post-processing the resulting
// probability map into text region boxes. Grounded on the teacher's
// internal/detector package, generalized from the teacher's
// aspect-preserving-resize-to-multiple-of-32 scheme to the spec's fixed
// 640x640 input and ImageNet normalization constants.
package detection

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/speedreader/speedreader/internal/kernel"
)

// InputSize is the model's fixed square input resolution.
const InputSize = 640

// ImageNet mean/std, per channel (R,G,B), in 0-255 pixel units — the
// normalization DBNet-class detectors are trained with.
var (
	normMean = [3]float32{123.675, 116.28, 103.53}
	normStd  = [3]float32{58.395, 57.12, 57.375}
)

// Preprocess resizes img to fit within InputSize x InputSize preserving
// aspect ratio, pads the remainder with the mean pixel (normalizing to
// 0), and normalizes into a [1,3,InputSize,InputSize] NCHW tensor. The
// resized content always occupies the top-left corner, so postprocess
// can recover original-image coordinates from a single uniform scale
// factor (max(origW/mapW, origH/mapH)) without needing an offset.
func Preprocess(img image.Image) kernel.Buffer {
	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	scale := math.Min(float64(InputSize)/float64(origW), float64(InputSize)/float64(origH))
	resizedW := clampDim(int(math.Round(float64(origW) * scale)))
	resizedH := clampDim(int(math.Round(float64(origH) * scale)))

	resized := imaging.Resize(img, resizedW, resizedH, imaging.Lanczos)
	rb := resized.Bounds()

	// Zero-valued; (mean-mean)/std == 0, so the untouched padding is
	// already the normalized neutral value.
	data := make([]float32, 3*InputSize*InputSize)
	for y := 0; y < resizedH; y++ {
		for x := 0; x < resizedW; x++ {
			r, g, b, _ := resized.At(x+rb.Min.X, y+rb.Min.Y).RGBA()
			rgb := [3]float32{float32(r >> 8), float32(g >> 8), float32(b >> 8)}
			for c := 0; c < 3; c++ {
				idx := c*InputSize*InputSize + y*InputSize + x
				data[idx] = (rgb[c] - normMean[c]) / normStd[c]
			}
		}
	}
	return kernel.Buffer{Data: data, Shape: []int{1, 3, InputSize, InputSize}}
}

func clampDim(d int) int {
	if d < 1 {
		return 1
	}
	if d > InputSize {
		return InputSize
	}
	return d
}
