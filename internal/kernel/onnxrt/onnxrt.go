// Package onnxrt is the kernel.Kernel implementation backed by
// github.com/yalue/onnxruntime_go, grounded directly on the teacher's
// internal/detector/session.go and internal/detector/detector.go
// inference plumbing.
package onnxrt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/speedreader/speedreader/internal/faults"
	"github.com/speedreader/speedreader/internal/kernel"
)

var (
	libPathOnce sync.Once
	libPathErr  error
)

// libraryName returns the platform-specific ONNX Runtime shared library
// file name, matching the teacher's internal/onnx/gpu.go constants.
func libraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

// ensureEnvironment sets the runtime library path (if not already set) and
// initializes the global ONNX Runtime environment exactly once per
// process, matching setupONNXEnvironment in the teacher.
func ensureEnvironment(libraryPath string) error {
	libPathOnce.Do(func() {
		path := libraryPath
		if path == "" {
			path = libraryName()
		}
		ort.SetSharedLibraryPath(path)
		if !ort.IsInitialized() {
			libPathErr = ort.InitializeEnvironment()
		}
	})
	return libPathErr
}

// GPUConfig mirrors the teacher's internal/onnx.GPUConfig, trimmed to the
// fields this module's engine construction actually wires up.
type GPUConfig struct {
	UseGPU   bool
	DeviceID int
}

// Config describes how to build a native ONNX session for one model.
type Config struct {
	// ModelPath loads the model from disk. Exactly one of ModelPath or
	// ModelBytes must be set.
	ModelPath string
	// ModelBytes loads the model from an in-memory buffer, e.g. an
	// embedded weights file (spec requirement the teacher's file-path-only
	// loader doesn't support).
	ModelBytes  []byte
	InputName   string
	OutputName  string
	NumThreads  int
	GPU         GPUConfig
	LibraryPath string
}

// Session is a kernel.Kernel backed by one onnxruntime_go session.
type Session struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	inputShape []int
	mu         sync.RWMutex
}

// New builds a Session, validating the model exposes exactly the
// input/output names requested (or auto-discovering them via
// GetInputOutputInfo when ModelPath is set and names are empty).
func New(cfg Config) (*Session, error) {
	if cfg.ModelPath == "" && len(cfg.ModelBytes) == 0 {
		return nil, faults.New(faults.KindResource, "onnxrt.New", errors.New("neither ModelPath nor ModelBytes set"))
	}
	if err := ensureEnvironment(cfg.LibraryPath); err != nil {
		return nil, faults.New(faults.KindResource, "onnxrt.New", fmt.Errorf("initialize ONNX Runtime: %w", err))
	}

	inputName, outputName, inputShape, err := resolveIO(cfg)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, faults.New(faults.KindResource, "onnxrt.New", fmt.Errorf("create session options: %w", err))
	}
	defer func() {
		if derr := opts.Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "onnxrt: destroy session options: %v\n", derr)
		}
	}()

	if cfg.GPU.UseGPU {
		if cudaOpts, cerr := ort.NewCUDAProviderOptions(); cerr == nil {
			_ = cudaOpts.Update(map[string]string{"device_id": fmt.Sprintf("%d", cfg.GPU.DeviceID)})
			_ = opts.AppendExecutionProviderCUDA(cudaOpts)
			_ = cudaOpts.Destroy()
		}
	}
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, faults.New(faults.KindResource, "onnxrt.New", fmt.Errorf("set thread count: %w", err))
		}
	}

	session, err := newDynamicSession(cfg, inputName, outputName, opts)
	if err != nil {
		return nil, faults.New(faults.KindResource, "onnxrt.New", fmt.Errorf("create session: %w", err))
	}

	return &Session{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		inputShape: inputShape,
	}, nil
}

func resolveIO(cfg Config) (inputName, outputName string, inputShape []int, err error) {
	if cfg.InputName != "" && cfg.OutputName != "" {
		return cfg.InputName, cfg.OutputName, nil, nil
	}
	if cfg.ModelPath == "" {
		return "", "", nil, faults.New(faults.KindResource, "onnxrt.resolveIO",
			errors.New("input/output names must be supplied explicitly when loading from ModelBytes"))
	}
	inputs, outputs, ierr := ort.GetInputOutputInfo(cfg.ModelPath)
	if ierr != nil {
		return "", "", nil, faults.New(faults.KindResource, "onnxrt.resolveIO", fmt.Errorf("inspect model: %w", ierr))
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return "", "", nil, faults.New(faults.KindResource, "onnxrt.resolveIO",
			fmt.Errorf("expected exactly 1 input and 1 output, got %d/%d", len(inputs), len(outputs)))
	}
	shape := make([]int, len(inputs[0].Dimensions))
	for i, d := range inputs[0].Dimensions {
		shape[i] = int(d)
	}
	return inputs[0].Name, outputs[0].Name, shape, nil
}

func newDynamicSession(cfg Config, inputName, outputName string, opts *ort.SessionOptions) (*ort.DynamicAdvancedSession, error) {
	if len(cfg.ModelBytes) > 0 {
		return ort.NewDynamicAdvancedSessionWithONNXData(cfg.ModelBytes,
			[]string{inputName}, []string{outputName}, opts)
	}
	return ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, []string{outputName}, opts)
}

// Execute runs one forward pass, matching runInferenceInternal's
// create-input / run / type-assert-output / destroy-both pattern.
func (s *Session) Execute(ctx context.Context, input kernel.Buffer) (kernel.Buffer, error) {
	if err := faults.FromContext(ctx, "onnxrt.Execute"); err != nil {
		return kernel.Buffer{}, err
	}
	if err := input.Validate(); err != nil {
		return kernel.Buffer{}, faults.New(faults.KindPreprocessing, "onnxrt.Execute", err)
	}

	shape := make([]int64, len(input.Shape))
	for i, d := range input.Shape {
		shape[i] = int64(d)
	}
	inputTensor, err := ort.NewTensor(ort.NewShape(shape...), input.Data)
	if err != nil {
		return kernel.Buffer{}, faults.New(faults.KindInference, "onnxrt.Execute", fmt.Errorf("create input tensor: %w", err))
	}
	defer func() {
		if derr := inputTensor.Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "onnxrt: destroy input tensor: %v\n", derr)
		}
	}()

	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return kernel.Buffer{}, faults.New(faults.KindResource, "onnxrt.Execute", errors.New("session closed"))
	}

	outputs := []ort.Value{nil}
	if err := session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return kernel.Buffer{}, faults.New(faults.KindInference, "onnxrt.Execute", fmt.Errorf("run: %w", err))
	}
	defer func() {
		if derr := outputs[0].Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "onnxrt: destroy output tensor: %v\n", derr)
		}
	}()

	floatTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return kernel.Buffer{}, faults.New(faults.KindInference, "onnxrt.Execute",
			fmt.Errorf("expected float32 output tensor, got %T", outputs[0]))
	}

	dims := floatTensor.GetShape()
	outShape := make([]int, len(dims))
	for i, d := range dims {
		outShape[i] = int(d)
	}
	data := make([]float32, len(floatTensor.GetData()))
	copy(data, floatTensor.GetData())

	return kernel.Buffer{Data: data, Shape: outShape}, nil
}

func (s *Session) InputShape() []int { return s.inputShape }
func (s *Session) OutputShape() []int {
	// The session does not record an output shape; this always returns
	// nil. Each Execute result carries its own shape.
	return nil
}

// Close destroys the native session. It does not call
// ort.DestroyEnvironment — the environment is process-lifetime, matching
// the teacher's explicit comment that environment teardown is out of
// scope for a single detector/recognizer Close.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	if err != nil {
		return faults.New(faults.KindResource, "onnxrt.Close", err)
	}
	return nil
}

var _ kernel.Kernel = (*Session)(nil)
