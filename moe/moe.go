// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package moe provides mixture-of-experts dispatch for classifiers.
//
// A router classifier scores every class. Its two best classes are
// matched against the label coverage of a pool of expert classifiers,
// encoded in the expert keys ("5_23" refines classes 5 and 23). The first
// expert in sorted key order that covers both classes is run on the same
// input, router and expert logits are averaged, and the arg-max of the
// average is the prediction. When no expert matches, the router output is
// used alone.
//
// # Example Usage
//
//	import (
//	    "github.com/born-ml/msnet/moe"
//	)
//
//	d, err := moe.New(moe.DefaultConfig(), router, map[string]moe.Model{
//	    "1_2": expertA,
//	    "0_3": expertB,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	class, err := d.Predict(pixels) // len(pixels) == 3*32*32
//
// Any type with a Run([]float32) ([]float32, error) method is a Model, so
// tests can script router and expert outputs without loading files.
package moe

import (
	"github.com/born-ml/msnet/internal/moe"
)

// Errors

var (
	// ErrNoExperts is returned when a dispatcher is built without experts.
	ErrNoExperts = moe.ErrNoExperts

	// ErrNilModel is returned when the router or an expert is nil.
	ErrNilModel = moe.ErrNilModel

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = moe.ErrInvalidConfig

	// ErrInvalidInput is returned when the input length does not match
	// the configured input shape.
	ErrInvalidInput = moe.ErrInvalidInput

	// ErrClassCountMismatch is returned when model outputs do not agree on
	// the number of classes or are shorter than TopK.
	ErrClassCountMismatch = moe.ErrClassCountMismatch
)

// Configuration

// Config configures a Dispatcher.
//
// Fields:
//   - TopK: router candidates considered (default 2; 1 disables experts)
//   - InputShape: NCHW input shape, batch 1 (default 1x3x32x32)
//   - FallbackOnExpertError: use the router output when the expert fails
type Config = moe.Config

// DefaultConfig returns a Config for 3x32x32 inputs with TopK = 2.
func DefaultConfig() Config {
	return moe.DefaultConfig()
}

// Dispatcher

// Model is an inference backend for one classifier.
type Model = moe.Model

// ModelFunc adapts a function to the Model interface.
type ModelFunc = moe.ModelFunc

// Dispatcher routes each input through the router and at most one expert.
type Dispatcher = moe.Dispatcher

// Result describes how a prediction was reached.
type Result = moe.Result

// Option configures a Dispatcher.
type Option = moe.Option

// WithObserver sets the dispatch event observer.
func WithObserver(obs Observer) Option {
	return moe.WithObserver(obs)
}

// New builds a dispatcher over a router and a set of experts keyed by
// their class coverage.
//
// Returns ErrNoExperts when experts is empty; the dispatcher is never
// built in a degraded state.
func New(cfg Config, router Model, experts map[string]Model, opts ...Option) (*Dispatcher, error) {
	return moe.New(cfg, router, experts, opts...)
}

// Observers

// Observer receives dispatch events such as skipped label segments or a
// missing expert.
type Observer = moe.Observer

// NopObserver discards all events.
type NopObserver = moe.NopObserver

// MultiObserver fans events out to several observers.
type MultiObserver = moe.MultiObserver

// Building blocks

// ExpertClassMap maps expert keys to covered class IDs.
type ExpertClassMap = moe.ExpertClassMap

// NewExpertClassMap parses expert keys into an ExpertClassMap.
func NewExpertClassMap(keys []string, obs Observer) *ExpertClassMap {
	return moe.NewExpertClassMap(keys, obs)
}

// ParseClassIDs returns the class IDs encoded in an expert key.
//
// Example:
//
//	moe.ParseClassIDs("5_23", nil) // [5 23]
func ParseClassIDs(key string, obs Observer) []int {
	return moe.ParseClassIDs(key, obs)
}

// TopK returns the k best class indices and scores, ties broken by the
// lower index.
func TopK(logits []float32, k int) ([]int, []float32) {
	return moe.TopK(logits, k)
}

// AverageLogits returns the element-wise mean of equal-length vectors.
func AverageLogits(vectors [][]float32) []float32 {
	return moe.AverageLogits(vectors)
}

// ArgMax returns the index of the largest value, the lowest index on ties.
func ArgMax(v []float32) int {
	return moe.ArgMax(v)
}
