package moe

import "errors"

// Sentinel errors returned by the dispatcher. Callers match them with
// errors.Is; the returned errors carry additional context.
var (
	// ErrNoExperts is returned when a dispatcher is built without experts.
	ErrNoExperts = errors.New("moe: no expert models")

	// ErrNilModel is returned when the router or an expert is nil.
	ErrNilModel = errors.New("moe: nil model")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("moe: invalid config")

	// ErrInvalidInput is returned when the input buffer does not match
	// the configured input shape. No model is run in that case.
	ErrInvalidInput = errors.New("moe: invalid input")

	// ErrClassCountMismatch is returned when a model produces fewer classes
	// than TopK, or when router and expert disagree on the class count.
	ErrClassCountMismatch = errors.New("moe: class count mismatch")
)
