package metrics

// Wrapper adapts Metrics to the narrow interfaces the api package
// consumes, so handler code does not depend on Prometheus types directly.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc()        { w.m.PredictionsTotal.Inc() }
func (w *Wrapper) ValidationFailuresInc() { w.m.ValidationFailures.Inc() }
func (w *Wrapper) ModelFailuresInc()      { w.m.ModelFailures.Inc() }

func (w *Wrapper) PredictLatencyObserve(v float64) { w.m.PredictLatency.Observe(v) }
func (w *Wrapper) ProbabilityObserve(v float64)    { w.m.PredictionProbabilities.Observe(v) }

func (w *Wrapper) ModelAgeSet(v float64) { w.m.ModelAge.Set(v) }

func (w *Wrapper) StreamOpened() { w.m.StreamConnections.Inc() }
func (w *Wrapper) StreamClosed() { w.m.StreamConnections.Dec() }
