package moe

// Observer receives dispatch events. Implementations must be safe for
// concurrent use when the dispatcher is shared between goroutines.
//
// The dispatcher never writes to an output stream itself; logging and
// metrics are plugged in through this interface.
type Observer interface {
	// LabelSegmentSkipped reports an expert key segment that is not an integer.
	LabelSegmentSkipped(key, segment string, err error)

	// Routed reports the router's top-K classes and scores.
	Routed(indices []int, scores []float32)

	// ExpertSelected reports the expert chosen for refinement.
	ExpertSelected(key string, pred1, pred2 int)

	// NoExpertMatched reports that no expert covers both predictions.
	NoExpertMatched(pred1, pred2 int)

	// ExpertFailed reports an expert error that was absorbed by falling
	// back to the router output.
	ExpertFailed(key string, err error)

	// Predicted reports the final class. expert is empty on the router-only
	// path; fallback is true when that path was taken after ExpertFailed.
	Predicted(class int, expert string, fallback bool)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) LabelSegmentSkipped(string, string, error) {}
func (NopObserver) Routed([]int, []float32) {}
func (NopObserver) ExpertSelected(string, int, int) {}
func (NopObserver) NoExpertMatched(int, int) {}
func (NopObserver) ExpertFailed(string, error) {}
func (NopObserver) Predicted(int, string, bool) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// LabelSegmentSkipped implements Observer.
func (m MultiObserver) LabelSegmentSkipped(key, segment string, err error) {
	for _, o := range m {
		o.LabelSegmentSkipped(key, segment, err)
	}
}

// Routed implements Observer.
func (m MultiObserver) Routed(indices []int, scores []float32) {
	for _, o := range m {
		o.Routed(indices, scores)
	}
}

// ExpertSelected implements Observer.
func (m MultiObserver) ExpertSelected(key string, pred1, pred2 int) {
	for _, o := range m {
		o.ExpertSelected(key, pred1, pred2)
	}
}

// NoExpertMatched implements Observer.
func (m MultiObserver) NoExpertMatched(pred1, pred2 int) {
	for _, o := range m {
		o.NoExpertMatched(pred1, pred2)
	}
}

// ExpertFailed implements Observer.
func (m MultiObserver) ExpertFailed(key string, err error) {
	for _, o := range m {
		o.ExpertFailed(key, err)
	}
}

// Predicted implements Observer.
func (m MultiObserver) Predicted(class int, expert string, fallback bool) {
	for _, o := range m {
		o.Predicted(class, expert, fallback)
	}
}
