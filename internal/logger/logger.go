// Package logger builds zerolog loggers and adapts them to dispatch events.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/born-ml/msnet/internal/moe"
)

// New returns a logger writing to out at the given level ("debug",
// "info", ...; empty means info). console selects the human-readable
// writer used by the CLI; otherwise events are JSON lines.
func New(level string, out io.Writer, console bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("component", "msnet").Logger(), nil
}

// Observer logs dispatch events.
type Observer struct {
	log zerolog.Logger
}

var _ moe.Observer = (*Observer)(nil)

// NewObserver returns an observer logging through log.
func NewObserver(log zerolog.Logger) *Observer {
	return &Observer{log: log}
}

// LabelSegmentSkipped implements moe.Observer.
func (o *Observer) LabelSegmentSkipped(key, segment string, err error) {
	o.log.Warn().Err(err).Str("expert", key).Str("segment", segment).
		Msg("could not parse class id from expert name segment")
}

// Routed implements moe.Observer.
func (o *Observer) Routed(indices []int, scores []float32) {
	o.log.Debug().Ints("top_classes", indices).Floats32("top_scores", scores).Msg("router predictions")
}

// ExpertSelected implements moe.Observer.
func (o *Observer) ExpertSelected(key string, pred1, pred2 int) {
	o.log.Debug().Str("expert", key).Int("pred1", pred1).Int("pred2", pred2).Msg("selected expert for refinement")
}

// NoExpertMatched implements moe.Observer.
func (o *Observer) NoExpertMatched(pred1, pred2 int) {
	o.log.Info().Int("pred1", pred1).Int("pred2", pred2).Msg("no suitable expert, using router output only")
}

// ExpertFailed implements moe.Observer.
func (o *Observer) ExpertFailed(key string, err error) {
	o.log.Warn().Err(err).Str("expert", key).Msg("expert inference failed, using router output only")
}

// Predicted implements moe.Observer.
func (o *Observer) Predicted(class int, expert string, fallback bool) {
	o.log.Debug().Int("class", class).Str("expert", expert).Bool("fallback", fallback).Msg("prediction")
}
