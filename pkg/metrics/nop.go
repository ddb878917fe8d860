package metrics

// Nop is a no-op recorder for tests and tooling that does not export metrics.
type Nop struct{}

func (Nop) RecordTrainingRun(strategy, result string) {}

func (Nop) RecordTrainingDuration(strategy string, seconds float64) {}

func (Nop) RecordPointsWritten(n int) {}

func (Nop) RecordOrdersIngested(n int) {}

func (Nop) RecordError(kind string) {}

func (Nop) RecordMAPE(place string, mape float64) {}
