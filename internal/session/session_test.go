package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/born/onnx"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockModel implements onnx.Model. It sums the input and emits
// [sum, -sum, 2*sum] under each output name.
type mockModel struct {
	inputNames  []string
	outputNames []string
	outDType    tensor.DataType
	err         error
	lastInputs  map[string]*tensor.RawTensor
}

var _ onnx.Model = (*mockModel)(nil)

func (m *mockModel) Forward(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	out, err := m.ForwardNamed(map[string]*tensor.RawTensor{m.inputNames[0]: input})
	if err != nil {
		return nil, err
	}
	return out[m.outputNames[0]], nil
}

func (m *mockModel) ForwardNamed(inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error) {
	m.lastInputs = inputs
	if m.err != nil {
		return nil, m.err
	}

	var sum float32
	for _, t := range inputs {
		for _, v := range t.AsFloat32() {
			sum += v
		}
	}

	dtype := m.outDType
	outputs := make(map[string]*tensor.RawTensor, len(m.outputNames))
	for _, name := range m.outputNames {
		out, err := tensor.NewRaw(tensor.Shape{1, 3}, dtype, tensor.CPU)
		if err != nil {
			return nil, err
		}
		if dtype == tensor.Float32 {
			copy(out.AsFloat32(), []float32{sum, -sum, 2 * sum})
		}
		outputs[name] = out
	}
	return outputs, nil
}

func (m *mockModel) InputNames() []string { return m.inputNames }
func (m *mockModel) OutputNames() []string { return m.outputNames }
func (m *mockModel) OpsetVersion() int64 { return 13 }
func (m *mockModel) Metadata() map[string]string { return map[string]string{} }

func tinyOptions() Options {
	opts := DefaultOptions()
	opts.InputShape = [4]int{1, 1, 2, 2}
	return opts
}

func TestSessionRun(t *testing.T) {
	model := &mockModel{inputNames: []string{"input"}, outputNames: []string{"output"}}

	s, err := New("router", model, tinyOptions())
	require.NoError(t, err)
	assert.Equal(t, "router", s.Name())
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, s.InputShape())

	logits, err := s.Run([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float32{10, -10, 20}, logits)

	in, ok := model.lastInputs["input"]
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, in.Shape())
	assert.Equal(t, tensor.Float32, in.DType())
}

func TestSessionRun_InputSize(t *testing.T) {
	model := &mockModel{inputNames: []string{"input"}, outputNames: []string{"output"}}
	s, err := New("router", model, tinyOptions())
	require.NoError(t, err)

	_, err = s.Run([]float32{1, 2, 3})
	require.ErrorIs(t, err, ErrInputSize)
	assert.Nil(t, model.lastInputs, "model must not run on bad input")
}

func TestSessionRun_ForwardError(t *testing.T) {
	boom := errors.New("node Gemm: shape mismatch")
	model := &mockModel{inputNames: []string{"input"}, outputNames: []string{"output"}, err: boom}
	s, err := New("router", model, tinyOptions())
	require.NoError(t, err)

	_, err = s.Run(make([]float32, 4))
	require.ErrorIs(t, err, boom)
}

func TestSessionRun_NonFloatOutput(t *testing.T) {
	model := &mockModel{inputNames: []string{"input"}, outputNames: []string{"output"}, outDType: tensor.Int64}
	s, err := New("router", model, tinyOptions())
	require.NoError(t, err)

	_, err = s.Run(make([]float32, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float32")
}

func TestNew_ResolvesNodeNames(t *testing.T) {
	// Single input/output under other names: used as-is.
	model := &mockModel{inputNames: []string{"pixel_values"}, outputNames: []string{"logits"}}
	s, err := New("m", model, tinyOptions())
	require.NoError(t, err)
	_, err = s.Run(make([]float32, 4))
	require.NoError(t, err)
	_, ok := model.lastInputs["pixel_values"]
	assert.True(t, ok)

	// Several outputs: the configured one is picked.
	model = &mockModel{inputNames: []string{"input"}, outputNames: []string{"features", "output"}}
	_, err = New("m", model, tinyOptions())
	require.NoError(t, err)

	// Several outputs and none matches.
	model = &mockModel{inputNames: []string{"input"}, outputNames: []string{"a", "b"}}
	_, err = New("m", model, tinyOptions())
	require.Error(t, err)

	// Several inputs and none matches.
	model = &mockModel{inputNames: []string{"x", "y"}, outputNames: []string{"output"}}
	_, err = New("m", model, tinyOptions())
	require.Error(t, err)
}

func TestNew_InvalidArguments(t *testing.T) {
	_, err := New("m", nil, tinyOptions())
	require.Error(t, err)

	opts := tinyOptions()
	opts.InputShape[2] = 0
	_, err = New("m", &mockModel{inputNames: []string{"input"}, outputNames: []string{"output"}}, opts)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	backend, release, err := NewBackend(false, 0)
	require.NoError(t, err)
	defer release()

	path := filepath.Join(t.TempDir(), "missing.onnx")
	_, err = Load(path, backend, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.onnx")
}

func TestNewBackend_CPU(t *testing.T) {
	backend, release, err := NewBackend(false, 0)
	require.NoError(t, err)
	require.NotNil(t, release)
	defer release()

	assert.Equal(t, tensor.CPU, backend.Device())
}
