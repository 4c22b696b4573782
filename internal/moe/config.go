package moe

import "fmt"

// Default input geometry, matching 32x32 RGB images.
const (
	DefaultTopK     = 2
	DefaultChannels = 3
	DefaultHeight   = 32
	DefaultWidth    = 32
)

// Config configures a Dispatcher. It is copied on construction.
type Config struct {
	// TopK is the number of router candidates considered. Expert
	// selection needs at least 2; with TopK = 1 the router output is used alone.
	TopK int

	// InputShape is the NCHW input shape. Batch must be 1.
	InputShape [4]int

	// FallbackOnExpertError makes a failing expert fall back to the
	// router-only result instead of failing the call.
	FallbackOnExpertError bool
}

// DefaultConfig returns a Config for 3x32x32 inputs with TopK = 2.
func DefaultConfig() Config {
	return Config{
		TopK:       DefaultTopK,
		InputShape: [4]int{1, DefaultChannels, DefaultHeight, DefaultWidth},
	}
}

// InputSize returns the number of elements in one input buffer.
func (c Config) InputSize() int {
	return c.InputShape[0] * c.InputShape[1] * c.InputShape[2] * c.InputShape[3]
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("%w: topk must be >= 1, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.InputShape[0] != 1 {
		return fmt.Errorf("%w: batch must be 1, got %d", ErrInvalidConfig, c.InputShape[0])
	}
	for i, d := range c.InputShape[1:] {
		if d <= 0 {
			return fmt.Errorf("%w: input dimension %d must be positive, got %d", ErrInvalidConfig, i+1, d)
		}
	}
	return nil
}
