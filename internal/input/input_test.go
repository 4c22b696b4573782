package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadFile(t *testing.T) {
	want := []float32{0.5, -1.25, 3, 0}

	tests := []struct {
		name string
		data []byte
	}{
		{"image.bin", EncodeRaw(want)},
		{"image.RAW", EncodeRaw(want)},
		{"image.csv", []byte("0.5,-1.25,3,0\n")},
		{"image.txt", []byte("0.5 -1.25\n3\t0")},
		{"image.json", []byte("[0.5, -1.25, 3, 0]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(write(t, tt.name, tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(write(t, "image.png", []byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ReadFile(write(t, "image.bin", []byte{1, 2, 3}))
	require.Error(t, err)

	_, err = ReadFile(write(t, "image.csv", []byte("1,two,3")))
	require.Error(t, err)

	_, err = ReadFile(write(t, "image.json", []byte(`{"a": 1}`)))
	require.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeRaw_Empty(t *testing.T) {
	got, err := DecodeRaw(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
