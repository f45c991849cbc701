package metrics

import (
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// SinkConfig names a sink implementation and carries its raw options.
type SinkConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// SinkBuilder constructs a MetricsSink from the conf block of a SinkConfig.
type SinkBuilder func(conf map[string]any) (MetricsSink, error)

var (
	sinkMu       sync.RWMutex
	sinkBuilders = map[string]SinkBuilder{}
)

// RegisterSink makes a sink implementation available under the given type
// name. Implementations call this from their init function.
func RegisterSink(name string, b SinkBuilder) error {
	if b == nil {
		return fmt.Errorf("nil builder for sink %q", name)
	}
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if _, ok := sinkBuilders[name]; ok {
		return fmt.Errorf("sink %q already registered", name)
	}
	sinkBuilders[name] = b
	return nil
}

// NewSink builds the sink named by cfg.Type from its conf block.
func NewSink(cfg SinkConfig) (MetricsSink, error) {
	sinkMu.RLock()
	b, ok := sinkBuilders[cfg.Type]
	sinkMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
	return b(cfg.Conf)
}

// DecodeConf fills a sink option struct from a raw conf block using json
// tags, so file and environment configuration share one tag set.
func DecodeConf(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}
