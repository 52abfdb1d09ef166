package eval

// #region types
// EvalConfig holds the agreement thresholds for a consistency run.
type EvalConfig struct {
	Tolerance float64   // maximum relative difference between strategies
	Energies  []float64 // MeV
}

// DefaultEvalConfig returns the thresholds used by the tools.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Tolerance: 1e-3,
		Energies:  []float64{1e4, 1e5, 1e6, 1e7, 1e8},
	}
}

// EvalMetric is a single named comparison.
type EvalMetric struct {
	Name      string
	Energy    float64
	Reference float64 // direct integration, or the recorded value
	Candidate float64
	Value     float64 // relative difference
	Pass      bool
}

// EvalResult is the outcome of a consistency run.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion types
