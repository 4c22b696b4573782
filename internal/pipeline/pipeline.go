// Package pipeline assembles a ready-to-use dispatcher from a Config:
// compute backend, router and expert sessions, observers.
package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/born-ml/msnet/internal/config"
	"github.com/born-ml/msnet/internal/moe"
	"github.com/born-ml/msnet/internal/session"
)

// LoaderFactory returns a loader for model files together with a func
// releasing whatever the loader holds.
type LoaderFactory func(cfg *config.Config) (session.Loader, func(), error)

// Option configures Build.
type Option func(*options)

type options struct {
	log       zerolog.Logger
	observers []moe.Observer
	loaders   LoaderFactory
}

// WithLogger sets the logger used while building.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver adds a dispatch observer.
func WithObserver(obs moe.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithLoaderFactory replaces the Born ONNX loader.
func WithLoaderFactory(f LoaderFactory) Option {
	return func(o *options) { o.loaders = f }
}

// Pipeline owns a dispatcher and the resources behind its models.
type Pipeline struct {
	*moe.Dispatcher
	release func()
}

// Build loads the router and every expert and returns a pipeline. Any
// load failure, or an expert directory without models, is fatal.
func Build(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	o := options{log: zerolog.Nop(), loaders: ONNXLoaders}
	for _, opt := range opts {
		opt(&o)
	}

	load, release, err := o.loaders(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.UseGPU {
		o.log.Info().Int("device_id", cfg.DeviceID).Msg("GPU backend enabled")
	}

	o.log.Info().Str("path", cfg.RouterModelPath).Msg("loading router model")
	router, err := load(cfg.RouterModelPath)
	if err != nil {
		release()
		return nil, fmt.Errorf("load router: %w", err)
	}

	o.log.Info().Str("dir", cfg.ExpertModelDir).Msg("loading expert models")
	experts, err := session.Discover(cfg.ExpertModelDir, func(path string) (moe.Model, error) {
		m, err := load(path)
		if err == nil {
			o.log.Info().Str("expert", session.ExpertKey(path)).Msg("loaded expert")
		}
		return m, err
	})
	if err != nil {
		release()
		return nil, err
	}

	var obs moe.Observer = moe.NopObserver{}
	if len(o.observers) > 0 {
		obs = moe.MultiObserver(o.observers)
	}

	d, err := moe.New(cfg.Dispatcher(), router, experts, moe.WithObserver(obs))
	if err != nil {
		release()
		return nil, err
	}

	return &Pipeline{Dispatcher: d, release: release}, nil
}

// Close releases the compute backend.
func (p *Pipeline) Close() {
	if p.release != nil {
		p.release()
		p.release = nil
	}
}

// ONNXLoaders is the default LoaderFactory: Born ONNX sessions on the
// configured backend.
func ONNXLoaders(cfg *config.Config) (session.Loader, func(), error) {
	backend, release, err := session.NewBackend(cfg.UseGPU, cfg.DeviceID)
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.Session()
	load := func(path string) (moe.Model, error) {
		s, err := session.Load(path, backend, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return load, release, nil
}
