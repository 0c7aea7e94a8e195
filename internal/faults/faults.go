// Package faults defines the error-kind taxonomy shared across the
// inference kernel, detection/recognition stages, the video frame source,
// and pipeline construction, so callers can branch with errors.Is/As
// instead of parsing messages.
package faults

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a fault by the subsystem that raised it.
type Kind string

const (
	// KindInference marks a failure inside the native inference call
	// itself (session.Run returning an error, a shape mismatch the
	// runtime rejects).
	KindInference Kind = "inference"
	// KindPreprocessing marks a failure preparing model input (resize,
	// normalize, crop) before the kernel is invoked.
	KindPreprocessing Kind = "preprocessing"
	// KindDecoder marks a failure of the video decoder subprocess, such as
	// an error reading its frame output.
	KindDecoder Kind = "decoder"
	// KindResource marks a failure acquiring a resource the caller
	// needed to proceed (executor slot, frame queue, model file).
	KindResource Kind = "resource"
	// KindCancelled marks an operation that stopped because its context
	// was cancelled or timed out.
	KindCancelled Kind = "cancelled"
)

// Fault is a typed error carrying a Kind alongside the wrapped cause.
type Fault struct {
	Kind Kind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Kind, f.Op)
	}
	return fmt.Sprintf("%s: %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Is reports whether target is a *Fault with the same Kind, letting
// callers write errors.Is(err, faults.Inference) style checks against the
// sentinel Kind wrappers below.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if errors.As(target, &other) {
		return f.Kind == other.Kind
	}
	return false
}

// New builds a Fault of the given kind wrapping err.
func New(kind Kind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// Inference, Preprocessing, Decoder, Resource, Cancelled are sentinel
// Fault values usable with errors.Is(err, faults.Inference) to test kind
// regardless of the wrapped cause.
var (
	Inference     = &Fault{Kind: KindInference}
	Preprocessing = &Fault{Kind: KindPreprocessing}
	Decoder       = &Fault{Kind: KindDecoder}
	Resource      = &Fault{Kind: KindResource}
	Cancelled     = &Fault{Kind: KindCancelled}
)

// FromContext converts a context error into a Cancelled Fault, or returns
// nil if ctx carries no error.
func FromContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return New(KindCancelled, op, err)
	}
	return nil
}
