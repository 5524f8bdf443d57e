package metrics

// MultiSink fans records out to several sinks. Optional recorders are only
// forwarded to the sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRelease forwards the releases to all sinks, returning the first error.
func (m *MultiSink) RecordRelease(rs []Release) error {
	for _, s := range m.Sinks {
		if err := s.RecordRelease(rs); err != nil {
			return err
		}
	}
	return nil
}

// RecordStep forwards loop snapshots.
func (m *MultiSink) RecordStep(sample StepSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StepRecorder); ok {
			if err := rec.RecordStep(sample); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSummary forwards run summaries.
func (m *MultiSink) RecordSummary(sum Summary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			if err := rec.RecordSummary(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPhase forwards phase changes.
func (m *MultiSink) RecordPhase(phase string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PhaseRecorder); ok {
			if err := rec.RecordPhase(phase); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		var err error
		switch c := s.(type) {
		case interface{ Close() error }:
			err = c.Close()
		case interface{ Close() }:
			c.Close()
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
