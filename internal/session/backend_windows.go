//go:build windows

package session

import (
	"fmt"

	"github.com/born-ml/born/backend/webgpu"
	"github.com/born-ml/born/tensor"
)

func newGPUBackend(_ int) (tensor.Backend, func(), error) {
	if !webgpu.IsAvailable() {
		return nil, nil, ErrGPUUnavailable
	}
	gpu, err := webgpu.New()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrGPUUnavailable, err)
	}
	return gpu, gpu.Release, nil
}
