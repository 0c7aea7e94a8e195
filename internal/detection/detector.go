package detection

import (
	"context"
	"image"

	"github.com/speedreader/speedreader/internal/engine"
)

// Detector runs the preprocess -> engine.Infer -> postprocess pipeline for
// one image, mirroring the shape of the teacher's detector.RunInference
// but delegating the inference call itself to a shared *engine.Engine.
type Detector struct {
	engine *engine.Engine
	cfg    Config
}

// New builds a Detector around an already-started engine.
func New(e *engine.Engine, cfg Config) *Detector {
	return &Detector{engine: e, cfg: cfg}
}

// Detect returns the text regions found in img, in original-image
// coordinates.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]Box, error) {
	input := Preprocess(img)
	output, err := engine.Await(d.engine.Infer(ctx, input))
	if err != nil {
		return nil, err
	}
	if len(output.Shape) != 4 {
		return nil, nil
	}
	mapH, mapW := output.Shape[2], output.Shape[3]
	bounds := img.Bounds()
	return PostProcess(output.Data, mapW, mapH, bounds.Dx(), bounds.Dy(), d.cfg), nil
}
