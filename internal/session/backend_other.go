//go:build !windows

package session

import "github.com/born-ml/born/tensor"

func newGPUBackend(_ int) (tensor.Backend, func(), error) {
	return nil, nil, ErrGPUUnavailable
}
