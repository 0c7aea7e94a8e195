// Package ocrpipeline composes the detection and recognition stages into
// the two streaming entry points the rest of the system calls: ReadOne
// (single image, two-level future) and ReadMany (a stream of images,
// results yielded in submission order). Rebuilt from the teacher's
// internal/pipeline/pipeline.go + process_images.go + parallel.go, which
// process images through a worker-channel pool and reorder results via a
// map keyed by index; this package instead threads a capacity semaphore
// through an outer/inner future pair per job, and read_many preserves
// order with an ordered FIFO of pending jobs rather than re-sorting
// afterward.
package ocrpipeline

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/speedreader/speedreader/internal/detection"
	"github.com/speedreader/speedreader/internal/faults"
	"github.com/speedreader/speedreader/internal/recognition"
)

// Result is the aggregated OCR output for one image.
type Result struct {
	Image        image.Image
	Detections   []detection.Box
	Recognitions []recognition.Recognized
	Err          error
}

// Inner is the per-job result future: exactly one Result is sent then the
// channel is closed.
type Inner <-chan Result

// Job is the outer future returned by ReadOne: exactly one Inner is sent,
// once a capacity-semaphore permit has been acquired, then the channel is
// closed.
type Job <-chan Inner

// Pipeline runs detect-then-recognize jobs under a shared capacity
// semaphore sized max_parallelism x max_batch_size x 2, per spec.
type Pipeline struct {
	detector   *detection.Detector
	recognizer *recognition.Recognizer
	permits    chan struct{}
}

// Config controls capacity sizing.
type Config struct {
	MaxParallelism int
	MaxBatchSize   int
}

// New builds a Pipeline around an already-started detector and recognizer
// (each wrapping its own *engine.Engine, so detection and recognition run
// concurrently on independent pools).
func New(d *detection.Detector, r *recognition.Recognizer, cfg Config) *Pipeline {
	maxParallelism := cfg.MaxParallelism
	if maxParallelism < 1 {
		maxParallelism = 1
	}
	maxBatch := cfg.MaxBatchSize
	if maxBatch < 1 {
		maxBatch = 1
	}
	capacity := maxParallelism * maxBatch * 2
	return &Pipeline{
		detector:   d,
		recognizer: r,
		permits:    make(chan struct{}, capacity),
	}
}

// ReadOne submits one image and returns the outer future. The outer
// future resolves once a capacity permit is acquired (possibly
// immediately if ctx is cancelled first, with an error result); the inner
// future resolves once detection and recognition for the image complete.
func (p *Pipeline) ReadOne(ctx context.Context, img image.Image) Job {
	outer := make(chan Inner, 1)
	go func() {
		defer close(outer)

		select {
		case p.permits <- struct{}{}:
		case <-ctx.Done():
			inner := make(chan Result, 1)
			inner <- Result{Image: img, Err: faults.FromContext(ctx, "ocrpipeline.ReadOne")}
			close(inner)
			outer <- inner
			return
		}

		inner := make(chan Result, 1)
		outer <- inner
		go p.run(ctx, img, inner)
	}()
	return outer
}

// run executes the per-job body (detect, then recognize each detected
// region) and releases the job's capacity permit in every terminal
// branch, success or failure.
func (p *Pipeline) run(ctx context.Context, img image.Image, inner chan<- Result) {
	defer close(inner)
	defer func() { <-p.permits }()

	boxes, err := p.detector.Detect(ctx, img)
	if err != nil {
		inner <- Result{Image: img, Err: err}
		return
	}

	recs, err := p.recognizeBoxes(ctx, img, boxes)
	if err != nil {
		inner <- Result{Image: img, Detections: boxes, Err: err}
		return
	}

	for i := range recs {
		recs[i].Text = strings.TrimSpace(recs[i].Text)
	}

	inner <- Result{Image: img, Detections: boxes, Recognitions: recs}
}

// recognizeBoxes submits every detected region from this image as an
// independent engine job up front, then collects results in box order —
// not completion order — so the returned slice and the "stop at the
// first error" contract stay deterministic regardless of which region's
// inference finishes first. Per spec §4.10, regions from the same image
// are independent engine jobs; the engine's own pool provides whatever
// parallelism is available.
func (p *Pipeline) recognizeBoxes(ctx context.Context, img image.Image, boxes []detection.Box) ([]recognition.Recognized, error) {
	pending := make([]<-chan recognition.Recognized, len(boxes))
	for i, b := range boxes {
		pending[i] = p.recognizer.Submit(ctx, img, b.Rotated)
	}

	out := make([]recognition.Recognized, 0, len(boxes))
	for _, ch := range pending {
		rec := <-ch
		if rec.Err != nil {
			return out, rec.Err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadMany submits each image from images, in order, and returns a
// channel yielding their Results in submission order. A producer
// goroutine iterates images and writes outer futures into a bounded FIFO;
// a consumer goroutine drains the FIFO in order, awaiting each job's
// outer then inner future before yielding. The returned channel closes
// after the last result, or after the first terminal fault (a
// cancellation or deadline error), which is yielded as the final item.
// Any other per-image error is yielded in that image's Result and the
// stream continues.
func (p *Pipeline) ReadMany(ctx context.Context, images <-chan image.Image) <-chan Result {
	out := make(chan Result)
	pending := make(chan Job, cap(p.permits))

	go func() {
		defer close(pending)
		for {
			select {
			case img, ok := <-images:
				if !ok {
					return
				}
				select {
				case pending <- p.ReadOne(ctx, img):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer close(out)
		for job := range pending {
			select {
			case inner, ok := <-job:
				if !ok {
					return
				}
				res, ok := <-inner
				if !ok {
					return
				}
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
				if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) ||
					errors.Is(res.Err, faults.Cancelled) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
