package session

import (
	"errors"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
)

// NewBackend returns the compute backend for inference and a func that
// releases it. useGPU selects WebGPU where Born supports it; deviceID is
// advisory because WebGPU chooses its own adapter.
func NewBackend(useGPU bool, deviceID int) (tensor.Backend, func(), error) {
	if useGPU {
		return newGPUBackend(deviceID)
	}
	return cpu.New(), func() {}, nil
}

// ErrGPUUnavailable is returned when a GPU backend was requested but
// cannot be created on this machine.
var ErrGPUUnavailable = errors.New("session: GPU backend unavailable")
