// Package otelmetric implements confstack.Meter over
// go.opentelemetry.io/otel/metric, using an Int64Counter and an
// Int64Gauge per distinct instrument name, created lazily and cached so
// repeated Counter/Gauge calls with the same name share one instrument.
package otelmetric

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mapoio/confstack"
)

// Meter adapts an otel metric.Meter to confstack.Meter.
type Meter struct {
	meter metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
	gauges   map[string]metric.Int64Gauge
}

var _ confstack.Meter = (*Meter)(nil)

// New wraps m.
func New(m metric.Meter) *Meter {
	return &Meter{
		meter:    m,
		counters: make(map[string]metric.Int64Counter),
		gauges:   make(map[string]metric.Int64Gauge),
	}
}

func (m *Meter) Counter(name string) confstack.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		var err error
		c, err = m.meter.Int64Counter(name)
		if err != nil {
			return noopInstrument{}
		}
		m.counters[name] = c
	}
	return counter{c: c}
}

func (m *Meter) Gauge(name string) confstack.Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gauges[name]
	if !ok {
		var err error
		g, err = m.meter.Int64Gauge(name)
		if err != nil {
			return noopInstrument{}
		}
		m.gauges[name] = g
	}
	return gauge{g: g}
}

type counter struct{ c metric.Int64Counter }

func (c counter) Add(delta int64, labels ...string) {
	c.c.Add(context.Background(), delta, metric.WithAttributes(toAttributes(labels)...))
}

type gauge struct{ g metric.Int64Gauge }

func (g gauge) Set(value int64, labels ...string) {
	g.g.Record(context.Background(), value, metric.WithAttributes(toAttributes(labels)...))
}

// toAttributes pairs labels up as key/value attribute.KeyValue entries,
// dropping a trailing unpaired label.
func toAttributes(labels []string) []attribute.KeyValue {
	n := len(labels) / 2
	out := make([]attribute.KeyValue, 0, n)
	for i := 0; i+1 < len(labels); i += 2 {
		out = append(out, attribute.String(labels[i], labels[i+1]))
	}
	return out
}

type noopInstrument struct{}

func (noopInstrument) Add(int64, ...string) {}
func (noopInstrument) Set(int64, ...string) {}
