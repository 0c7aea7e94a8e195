package recognition

import (
	"context"
	"image"

	"github.com/speedreader/speedreader/internal/ctcdecode"
	"github.com/speedreader/speedreader/internal/engine"
	"github.com/speedreader/speedreader/internal/geometry"
	"github.com/speedreader/speedreader/internal/models"
)

// Recognized is one region's recognized text with confidence, carrying the
// detection box it was cropped from so callers can correlate results back
// to image coordinates.
type Recognized struct {
	Box        geometry.RotatedRect
	Text       string
	Confidence float64
	// Err carries a failed job's error through Submit's result channel; it
	// is always nil on a Recognized returned alongside a nil error.
	Err error
}

// Recognizer runs the crop -> preprocess -> engine.Infer -> CTC decode
// pipeline for one detected region at a time, mirroring the shape of the
// teacher's recognizer.Recognizer but delegating the inference call to a
// shared *engine.Engine and the decode step to ctcdecode.Decoder.
type Recognizer struct {
	engine  *engine.Engine
	decoder ctcdecode.Decoder
}

// New builds a Recognizer around an already-started engine and a loaded
// dictionary. Blank is class 0 of the CTC head and is not stored in the
// dictionary, so model class i decodes to dictionary token i-1.
func New(e *engine.Engine, charset *models.Charset) *Recognizer {
	classes := append([]string{""}, charset.Strings()...)
	return &Recognizer{
		engine:  e,
		decoder: ctcdecode.Decoder{Blank: 0, Classes: classes},
	}
}

// Recognize crops rect out of img along its local axes, runs it through
// the recognition model, and CTC-decodes the result.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, rect geometry.RotatedRect) (Recognized, error) {
	rec := <-r.Submit(ctx, img, rect)
	return rec, rec.Err
}

// Submit crops and preprocesses rect, hands the engine job off without
// blocking, and returns a channel that yields the decoded result once the
// engine's two-level future resolves. Separated from Recognize so callers
// with several regions from one image (ocrpipeline.recognizeBoxes) can
// submit them all before waiting on any of them, per spec §4.10's
// "regions from the same image are submitted as independent engine jobs."
func (r *Recognizer) Submit(ctx context.Context, img image.Image, rect geometry.RotatedRect) <-chan Recognized {
	cropped := CropRotated(img, rect, TargetWidth, TargetHeight)
	input := Preprocess(cropped)
	outer := r.engine.Infer(ctx, input)

	result := make(chan Recognized, 1)
	go func() {
		defer close(result)
		output, err := engine.Await(outer)
		if err != nil {
			result <- Recognized{Box: rect, Err: err}
			return
		}
		if len(output.Shape) != 3 {
			result <- Recognized{Box: rect}
			return
		}
		timesteps, vocab := output.Shape[1], output.Shape[2]
		decoded := r.decoder.Decode(output.Data, timesteps, vocab)
		result <- Recognized{Box: rect, Text: decoded.Text, Confidence: decoded.Confidence}
	}()
	return result
}

// RecognizeAll recognizes each rect in order, stopping at the first
// error. Submits one job at a time (unlike ocrpipeline.recognizeBoxes,
// which submits a whole image's boxes concurrently) so callers that care
// about a deterministic admission order into a size-1 engine still get
// one.
func (r *Recognizer) RecognizeAll(ctx context.Context, img image.Image, rects []geometry.RotatedRect) ([]Recognized, error) {
	out := make([]Recognized, 0, len(rects))
	for _, rect := range rects {
		rec, err := r.Recognize(ctx, img, rect)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
