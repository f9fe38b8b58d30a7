package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRefereeLoad forwards to the sinks implementing RefereeLoadRecorder.
func (m *MultiSink) RecordRefereeLoad(loads []RefereeLoad) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RefereeLoadRecorder); ok {
			if err := rec.RecordRefereeLoad(loads); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordWarning forwards to the sinks implementing WarningRecorder.
func (m *MultiSink) RecordWarning(ev WarningEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(WarningRecorder); ok {
			if err := rec.RecordWarning(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
