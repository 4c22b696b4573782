// Package metrics reports dispatch counters to DogStatsD.
package metrics

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/born-ml/msnet/internal/moe"
)

// Metric names.
const (
	PredictCount  = "msnet.predict.count"
	RoutedCount   = "msnet.router.count"
	NoMatchCount  = "msnet.expert.nomatch"
	ExpertErrors  = "msnet.expert.error"
	LabelsSkipped = "msnet.label.skipped"
)

const fullSampleRate = 1.0

// NewClient returns a DogStatsD client for addr tagged with tags. An empty
// addr returns a no-op client.
func NewClient(addr string, tags []string) (statsd.ClientInterface, error) {
	if addr == "" {
		return &statsd.NoOpClient{}, nil
	}
	client, err := statsd.New(addr, statsd.WithTags(tags))
	if err != nil {
		return nil, fmt.Errorf("statsd client for %s: %w", addr, err)
	}
	return client, nil
}

// Observer counts dispatch events. Errors from the client are dropped:
// metrics never fail a prediction.
type Observer struct {
	client statsd.ClientInterface
}

var _ moe.Observer = (*Observer)(nil)

// NewObserver returns an observer reporting through client.
func NewObserver(client statsd.ClientInterface) *Observer {
	return &Observer{client: client}
}

func (o *Observer) incr(name string, tags ...string) {
	_ = o.client.Incr(name, tags, fullSampleRate)
}

// LabelSegmentSkipped implements moe.Observer.
func (o *Observer) LabelSegmentSkipped(key, _ string, _ error) {
	o.incr(LabelsSkipped, "expert:"+key)
}

// Routed implements moe.Observer.
func (o *Observer) Routed([]int, []float32) {
	o.incr(RoutedCount)
}

// ExpertSelected implements moe.Observer.
func (o *Observer) ExpertSelected(string, int, int) {}

// NoExpertMatched implements moe.Observer.
func (o *Observer) NoExpertMatched(int, int) {
	o.incr(NoMatchCount)
}

// ExpertFailed implements moe.Observer.
func (o *Observer) ExpertFailed(key string, _ error) {
	o.incr(ExpertErrors, "expert:"+key)
}

// Predicted implements moe.Observer.
func (o *Observer) Predicted(_ int, expert string, fallback bool) {
	switch {
	case fallback:
		o.incr(PredictCount, "path:fallback")
	case expert == "":
		o.incr(PredictCount, "path:router")
	default:
		o.incr(PredictCount, "path:expert", "expert:"+expert)
	}
}
