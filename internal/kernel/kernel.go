// Package kernel defines the uniform inference contract every detection
// and recognition backend runs through: execute(input, shape) -> (output,
// shape). Concrete backends live in subpackages (onnxrt for the real
// ONNX Runtime implementation, mock for tests), grounded on the teacher's
// internal/onnx/tensor.go tensor model and internal/detector/session.go
// session lifecycle.
package kernel

import (
	"context"
	"fmt"

	"github.com/speedreader/speedreader/internal/faults"
)

// Buffer is a contiguous float32 tensor plus its dimensions, row-major.
// len(Data) must equal the product of Shape.
type Buffer struct {
	Data  []float32
	Shape []int
}

// Validate checks the length/shape invariant.
func (b Buffer) Validate() error {
	want := 1
	for _, d := range b.Shape {
		if d <= 0 {
			return fmt.Errorf("kernel: non-positive dimension in shape %v", b.Shape)
		}
		want *= d
	}
	if len(b.Data) != want {
		return fmt.Errorf("kernel: data length %d does not match shape %v (want %d)", len(b.Data), b.Shape, want)
	}
	return nil
}

// Kernel is the uniform native-inference contract. Implementations own
// their own session lifetime and must be safe for concurrent Execute calls
// from multiple goroutines (the executor runs many in flight at once).
type Kernel interface {
	// Execute runs one forward pass. Implementations must return a
	// *faults.Fault with KindInference on any native failure.
	Execute(ctx context.Context, input Buffer) (Buffer, error)
	// InputShape and OutputShape report the model's fixed-rank tensor
	// shapes with dynamic dimensions as -1.
	InputShape() []int
	OutputShape() []int
	// Close releases the underlying native session.
	Close() error
}

// WrapInferenceError ensures err, if non-nil, is a *faults.Fault with
// KindInference, regardless of what the backend returned.
func WrapInferenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return faults.New(faults.KindInference, op, err)
}
