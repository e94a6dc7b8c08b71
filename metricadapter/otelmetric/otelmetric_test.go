package otelmetric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mapoio/confstack"
)

func TestMeter_CounterAndGaugeAreUsableInstruments(t *testing.T) {
	m := New(noop.NewMeterProvider().Meter("confstack"))

	var _ confstack.Meter = m

	c := m.Counter("confstack_reloads_total")
	c.Add(1, "provider", "reloading")

	g := m.Gauge("confstack_file_size_bytes")
	g.Set(1024, "path", "config.yaml")
}

func TestMeter_RepeatedNameReturnsCachedInstrument(t *testing.T) {
	m := New(noop.NewMeterProvider().Meter("confstack"))

	c1 := m.Counter("same")
	c2 := m.Counter("same")
	require.NotNil(t, c1)
	require.NotNil(t, c2)
	assert.Len(t, m.counters, 1)
}
