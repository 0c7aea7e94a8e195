// Package mock provides a synthetic kernel.Kernel for tests and BDD
// scenarios that must exercise the engine/executor/sensor/tuner stack
// without a real ONNX model, mirroring the teacher's internal/onnx/mock
// package.
package mock

import (
	"context"
	"time"

	"github.com/speedreader/speedreader/internal/faults"
	"github.com/speedreader/speedreader/internal/kernel"
)

// Fn computes an output Buffer for a given input, used to script the
// kernel's behavior per test.
type Fn func(input kernel.Buffer) (kernel.Buffer, error)

// Kernel is a mock.Kernel that calls Fn after sleeping Latency, useful for
// exercising the executor/tuner's throughput-based scaling without a real
// model.
type Kernel struct {
	Fn          Fn
	Latency     time.Duration
	in          []int
	out         []int
	closed      bool
	ExecuteHook func()
}

// New builds a Kernel with a fixed input/output shape and a Fn that
// returns a zero-filled output of OutputShape regardless of input.
func New(inputShape, outputShape []int) *Kernel {
	outLen := 1
	for _, d := range outputShape {
		outLen *= d
	}
	return &Kernel{
		in:  inputShape,
		out: outputShape,
		Fn: func(kernel.Buffer) (kernel.Buffer, error) {
			return kernel.Buffer{Data: make([]float32, outLen), Shape: outputShape}, nil
		},
	}
}

func (k *Kernel) Execute(ctx context.Context, input kernel.Buffer) (kernel.Buffer, error) {
	if k.ExecuteHook != nil {
		k.ExecuteHook()
	}
	if err := faults.FromContext(ctx, "mock.Execute"); err != nil {
		return kernel.Buffer{}, err
	}
	if k.Latency > 0 {
		select {
		case <-time.After(k.Latency):
		case <-ctx.Done():
			return kernel.Buffer{}, faults.New(faults.KindCancelled, "mock.Execute", ctx.Err())
		}
	}
	out, err := k.Fn(input)
	if err != nil {
		return kernel.Buffer{}, faults.New(faults.KindInference, "mock.Execute", err)
	}
	return out, nil
}

func (k *Kernel) InputShape() []int  { return k.in }
func (k *Kernel) OutputShape() []int { return k.out }
func (k *Kernel) Close() error       { k.closed = true; return nil }
func (k *Kernel) Closed() bool       { return k.closed }

var _ kernel.Kernel = (*Kernel)(nil)
