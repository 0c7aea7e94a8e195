package ocrpipeline

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speedreader/speedreader/internal/detection"
	"github.com/speedreader/speedreader/internal/engine"
	"github.com/speedreader/speedreader/internal/kernel"
	"github.com/speedreader/speedreader/internal/kernel/mock"
	"github.com/speedreader/speedreader/internal/models"
	"github.com/speedreader/speedreader/internal/recognition"
)

func blobDetectionKernel() kernel.Kernel {
	w, h := 32, 32
	prob := make([]float32, w*h)
	for y := 10; y < 20; y++ {
		for x := 8; x < 24; x++ {
			prob[y*w+x] = 0.9
		}
	}
	k := mock.New([]int{1, 3, detection.InputSize, detection.InputSize}, []int{1, 1, h, w})
	k.Fn = func(kernel.Buffer) (kernel.Buffer, error) {
		return kernel.Buffer{Data: prob, Shape: []int{1, 1, h, w}}, nil
	}
	return k
}

func blankRecognitionKernel(classes []string) kernel.Kernel {
	timesteps, vocab := 2, len(classes)
	logits := make([]float32, timesteps*vocab)
	for t := 0; t < timesteps; t++ {
		logits[t*vocab+0] = 10 // blank every timestep -> empty text
	}
	k := mock.New([]int{1, 3, recognition.TargetHeight, recognition.TargetWidth}, []int{1, timesteps, vocab})
	k.Fn = func(kernel.Buffer) (kernel.Buffer, error) {
		return kernel.Buffer{Data: logits, Shape: []int{1, timesteps, vocab}}, nil
	}
	return k
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	detEngine := engine.New(blobDetectionKernel(), engine.Config{InitialParallelism: 1, MinParallelism: 1})
	det := detection.New(detEngine, detection.DefaultConfig())

	classes := []string{"-", "a"}
	recEngine := engine.New(blankRecognitionKernel(classes), engine.Config{InitialParallelism: 1, MinParallelism: 1})
	charset := &models.Charset{Tokens: classes[1:], IndexToToken: map[int]string{0: "a"}}
	rec := recognition.New(recEngine, charset)

	return New(det, rec, Config{MaxParallelism: 1, MaxBatchSize: 1})
}

func solidGray(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	return img
}

func TestReadOneResolvesOuterThenInner(t *testing.T) {
	p := testPipeline(t)
	job := p.ReadOne(context.Background(), solidGray(320, 320))

	inner, ok := <-job
	require.True(t, ok)

	res, ok := <-inner
	require.True(t, ok)
	require.NoError(t, res.Err)
	require.Len(t, res.Detections, 1)
	require.Len(t, res.Recognitions, 1)
}

func TestReadOneCancelledBeforeAdmissionYieldsErrorResult(t *testing.T) {
	p := testPipeline(t)
	for i := 0; i < cap(p.permits); i++ {
		p.permits <- struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := p.ReadOne(ctx, solidGray(320, 320))
	inner := <-job
	res := <-inner
	require.Error(t, res.Err)
}

func TestReadManyPreservesSubmissionOrder(t *testing.T) {
	p := testPipeline(t)
	images := make(chan image.Image)
	go func() {
		defer close(images)
		for i := 0; i < 3; i++ {
			images <- solidGray(320, 320)
		}
	}()

	out := p.ReadMany(context.Background(), images)

	count := 0
	for res := range out {
		require.NoError(t, res.Err)
		count++
	}
	require.Equal(t, 3, count)
}

func TestReadManyStopsStreamAfterTerminalFault(t *testing.T) {
	p := testPipeline(t)
	boom := context.Canceled
	calls := 0
	p.detector = detection.New(
		engine.New(&erroringKernel{err: boom, shape: []int{1, 1, 32, 32}, after: 1, calls: &calls}, engine.Config{InitialParallelism: 1, MinParallelism: 1}),
		detection.DefaultConfig(),
	)

	images := make(chan image.Image)
	go func() {
		defer close(images)
		for i := 0; i < 3; i++ {
			images <- solidGray(320, 320)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := p.ReadMany(ctx, images)
	var results []Result
	for res := range out {
		results = append(results, res)
	}
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

type erroringKernel struct {
	err   error
	shape []int
	after int
	calls *int
}

func (k *erroringKernel) Execute(ctx context.Context, _ kernel.Buffer) (kernel.Buffer, error) {
	*k.calls++
	if *k.calls >= k.after {
		return kernel.Buffer{}, k.err
	}
	out := make([]float32, 32*32)
	return kernel.Buffer{Data: out, Shape: k.shape}, nil
}
func (k *erroringKernel) InputShape() []int  { return []int{1, 3, detection.InputSize, detection.InputSize} }
func (k *erroringKernel) OutputShape() []int { return k.shape }
func (k *erroringKernel) Close() error       { return nil }
