// Package input decodes input buffers for the msnet CLI.
//
// Supported formats, chosen by file extension:
//   - .bin, .raw: little-endian float32 values
//   - .csv, .txt: decimal floats separated by commas or whitespace
//   - .json: a JSON array of numbers
package input

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnknownFormat is returned for unsupported file extensions.
var ErrUnknownFormat = errors.New("input: unknown file format")

// ReadFile reads and decodes the input file at path.
func ReadFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values []float32
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bin", ".raw":
		values, err = DecodeRaw(data)
	case ".csv", ".txt":
		values, err = DecodeText(string(data))
	case ".json":
		values, err = DecodeJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return values, nil
}

// DecodeRaw decodes little-endian float32 values.
func DecodeRaw(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("raw input length %d is not a multiple of 4", len(data))
	}
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}

// EncodeRaw is the inverse of DecodeRaw.
func EncodeRaw(values []float32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// DecodeText parses floats separated by commas and/or whitespace.
func DecodeText(text string) ([]float32, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	values := make([]float32, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values = append(values, float32(v))
	}
	return values, nil
}

// DecodeJSON parses a JSON array of numbers.
func DecodeJSON(data []byte) ([]float32, error) {
	var values []float32
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
