package metrics

import (
	"strings"
	"testing"
)

type optSink struct {
	NopSink
	limit int
}

type optConf struct {
	Limit int `json:"limit"`
}

func TestRegisterAndBuildSink(t *testing.T) {
	err := RegisterSink("capture", func(conf map[string]any) (MetricsSink, error) {
		var c optConf
		if err := DecodeConf(conf, &c); err != nil {
			return nil, err
		}
		return &optSink{limit: c.Limit}, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err := NewSink(SinkConfig{Type: "capture", Conf: map[string]any{"limit": 7}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.(*optSink).limit != 7 {
		t.Fatalf("conf not decoded: limit = %d", s.(*optSink).limit)
	}
}

func TestRegisterSinkRejectsDuplicatesAndNil(t *testing.T) {
	if err := RegisterSink("dup", func(map[string]any) (MetricsSink, error) { return NopSink{}, nil }); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := RegisterSink("dup", func(map[string]any) (MetricsSink, error) { return NopSink{}, nil }); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := RegisterSink("empty", nil); err == nil {
		t.Fatal("expected nil builder error")
	}
}

func TestNewSinkUnknownType(t *testing.T) {
	_, err := NewSink(SinkConfig{Type: "graphite"})
	if err == nil || !strings.Contains(err.Error(), "graphite") {
		t.Fatalf("expected unknown type error naming the sink, got %v", err)
	}
}
