package moe

import (
	"fmt"
	"maps"
	"slices"
)

// Model is an inference backend for one classifier: it maps a flattened
// NCHW input to one logit per class.
//
// Run may be called from several goroutines when the dispatcher is
// shared; implementations that are not safe for that must serialize
// themselves.
type Model interface {
	Run(input []float32) ([]float32, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(input []float32) ([]float32, error)

// Run calls f(input).
func (f ModelFunc) Run(input []float32) ([]float32, error) {
	return f(input)
}

// Result describes one dispatch.
type Result struct {
	// Class is the predicted class index.
	Class int

	// TopIndices and TopScores are the router's top-K candidates.
	TopIndices []int
	TopScores  []float32

	// Expert is the key of the expert that refined the prediction,
	// empty when the router output was used alone.
	Expert string

	// Fallback is true when an expert was selected but failed and the
	// router output was used instead.
	Fallback bool

	// Fused is the averaged logit vector the class was taken from.
	Fused []float32
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the event observer. The default discards events.
func WithObserver(obs Observer) Option {
	return func(d *Dispatcher) {
		if obs != nil {
			d.obs = obs
		}
	}
}

// Dispatcher routes each input through the router and at most one expert.
// All fields are read-only after New, so Predict is safe for concurrent
// use provided the models are.
type Dispatcher struct {
	cfg      Config
	router   Model
	experts  map[string]Model
	classMap *ExpertClassMap
	obs      Observer
}

// New builds a dispatcher. It fails if cfg is invalid, router is nil,
// experts is empty or contains a nil model. The expert class map is
// parsed here; unparsable key segments are reported to the observer.
func New(cfg Config, router Model, experts map[string]Model, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if router == nil {
		return nil, fmt.Errorf("%w: router", ErrNilModel)
	}
	if len(experts) == 0 {
		return nil, ErrNoExperts
	}

	d := &Dispatcher{
		cfg:     cfg,
		router:  router,
		experts: make(map[string]Model, len(experts)),
		obs:     NopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}

	for key, m := range experts {
		if m == nil {
			return nil, fmt.Errorf("%w: expert %q", ErrNilModel, key)
		}
		d.experts[key] = m
	}
	d.classMap = NewExpertClassMap(slices.Sorted(maps.Keys(d.experts)), d.obs)

	return d, nil
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// Experts returns the expert class map used for selection.
func (d *Dispatcher) Experts() *ExpertClassMap {
	return d.classMap
}

// Predict returns the predicted class for one input.
func (d *Dispatcher) Predict(input []float32) (int, error) {
	res, err := d.PredictDetailed(input)
	if err != nil {
		return 0, err
	}
	return res.Class, nil
}

// PredictDetailed runs the full dispatch and returns how the class was
// reached.
//
// Steps:
//  1. Validate the input length (no model runs on mismatch)
//  2. Run the router and take its top-K classes
//  3. Pick the first expert covering the two best classes (TopK >= 2)
//  4. Run the expert, if any
//  5. Average router and expert logits and take the arg-max
func (d *Dispatcher) PredictDetailed(input []float32) (*Result, error) {
	if want := d.cfg.InputSize(); len(input) != want {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInvalidInput, len(input), want)
	}

	routerLogits, err := d.router.Run(input)
	if err != nil {
		return nil, fmt.Errorf("router inference: %w", err)
	}
	if len(routerLogits) < d.cfg.TopK {
		return nil, fmt.Errorf("%w: router returned %d classes, topk is %d",
			ErrClassCountMismatch, len(routerLogits), d.cfg.TopK)
	}

	res := &Result{}
	res.TopIndices, res.TopScores = TopK(routerLogits, d.cfg.TopK)
	d.obs.Routed(res.TopIndices, res.TopScores)

	logits := [][]float32{routerLogits}
	if d.cfg.TopK >= 2 {
		pred1, pred2 := res.TopIndices[0], res.TopIndices[1]
		key, ok := d.classMap.Select(pred1, pred2)
		if ok {
			d.obs.ExpertSelected(key, pred1, pred2)
			expertLogits, err := d.runExpert(key, input, len(routerLogits))
			switch {
			case err == nil:
				logits = append(logits, expertLogits)
				res.Expert = key
			case d.cfg.FallbackOnExpertError:
				d.obs.ExpertFailed(key, err)
				res.Fallback = true
			default:
				return nil, err
			}
		} else {
			d.obs.NoExpertMatched(pred1, pred2)
		}
	}

	res.Fused = AverageLogits(logits)
	res.Class = ArgMax(res.Fused)
	d.obs.Predicted(res.Class, res.Expert, res.Fallback)

	return res, nil
}

func (d *Dispatcher) runExpert(key string, input []float32, numClasses int) ([]float32, error) {
	out, err := d.experts[key].Run(input)
	if err != nil {
		return nil, fmt.Errorf("expert %q inference: %w", key, err)
	}
	if len(out) != numClasses {
		return nil, fmt.Errorf("%w: expert %q returned %d classes, router returned %d",
			ErrClassCountMismatch, key, len(out), numClasses)
	}
	return out, nil
}
