package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/born/onnx"
	"github.com/born-ml/born/tensor"
)

// Default graph node names used by the exported classifiers.
const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// ErrInputSize is returned by Run when the input does not match the
// session's input shape.
var ErrInputSize = errors.New("session: input size mismatch")

// Options configures how a model is bound to a Session.
type Options struct {
	// InputName and OutputName select the graph nodes. If the model has a
	// single input (or output) and the name is not found, that one is used.
	InputName  string
	OutputName string

	// InputShape is the NCHW shape of one input.
	InputShape [4]int

	// Strict fails loading on operators Born does not support.
	Strict bool
}

// DefaultOptions returns options for a 1x3x32x32 input named "input"
// and an output named "output".
func DefaultOptions() Options {
	return Options{
		InputName:  DefaultInputName,
		OutputName: DefaultOutputName,
		InputShape: [4]int{1, 3, 32, 32},
	}
}

// Session is a loaded classifier. It is safe for concurrent Run calls:
// Born copies its tensor table per forward pass.
type Session struct {
	name       string
	model      onnx.Model
	inputName  string
	outputName string
	shape      tensor.Shape
	size       int
}

// Load parses and compiles the ONNX file at path.
func Load(path string, backend tensor.Backend, opts Options) (*Session, error) {
	loadOpts := onnx.DefaultLoadOptions()
	loadOpts.StrictMode = opts.Strict

	model, err := onnx.Load(path, backend, loadOpts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	s, err := New(path, model, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// New binds an already loaded model. name is used in error messages.
func New(name string, model onnx.Model, opts Options) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("session %s: nil model", name)
	}

	inputName, err := resolveNode(opts.InputName, model.InputNames(), "input")
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", name, err)
	}
	outputName, err := resolveNode(opts.OutputName, model.OutputNames(), "output")
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", name, err)
	}

	shape := tensor.Shape{opts.InputShape[0], opts.InputShape[1], opts.InputShape[2], opts.InputShape[3]}
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("session %s: invalid input shape %v", name, shape)
		}
		size *= d
	}

	return &Session{
		name:       name,
		model:      model,
		inputName:  inputName,
		outputName: outputName,
		shape:      shape,
		size:       size,
	}, nil
}

// resolveNode picks the graph node to bind to.
func resolveNode(want string, available []string, kind string) (string, error) {
	if slices.Contains(available, want) {
		return want, nil
	}
	if len(available) == 1 {
		return available[0], nil
	}
	return "", fmt.Errorf("%s %q not found in model %ss %v", kind, want, kind, available)
}

// Name returns the name the session was created with.
func (s *Session) Name() string {
	return s.name
}

// InputShape returns the NCHW input shape.
func (s *Session) InputShape() tensor.Shape {
	return slices.Clone(s.shape)
}

// Run executes one forward pass and returns the output logits.
func (s *Session) Run(input []float32) ([]float32, error) {
	if len(input) != s.size {
		return nil, fmt.Errorf("%w: %s got %d values, want %d", ErrInputSize, s.name, len(input), s.size)
	}

	raw, err := tensor.NewRaw(s.shape, tensor.Float32, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("%s: allocate input: %w", s.name, err)
	}
	copy(raw.AsFloat32(), input)

	outputs, err := s.model.ForwardNamed(map[string]*tensor.RawTensor{s.inputName: raw})
	if err != nil {
		return nil, fmt.Errorf("%s: forward: %w", s.name, err)
	}

	out, ok := outputs[s.outputName]
	if !ok || out == nil {
		return nil, fmt.Errorf("%s: missing output %q", s.name, s.outputName)
	}
	if out.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%s: output %q has dtype %v, want float32", s.name, s.outputName, out.DType())
	}

	return slices.Clone(out.AsFloat32()), nil
}
