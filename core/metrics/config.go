package metrics

// Config lists the metrics sinks to instantiate for a run.
type Config struct {
	Sinks []SinkConfig `json:"sinks"`
}

// Build instantiates every configured sink and wraps them in a MultiSink.
// An empty configuration yields a NopSink.
func (c Config) Build() (MetricsSink, error) {
	if len(c.Sinks) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, 0, len(c.Sinks))
	for _, mc := range c.Sinks {
		s, err := NewSink(mc)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
