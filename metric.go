package confstack

// Meter is the metrics collaborator used by the reloading file provider to
// report file size, reload counts, and watcher counts (spec.md §4.5 step
// 8). Modeled on the teacher repository's Meter abstraction so a concrete
// adapter (OpenTelemetry, Prometheus, noop) can be swapped freely.
type Meter interface {
	// Counter returns a monotonically-increasing instrument identified by
	// name; repeated calls with the same name return the same instrument.
	Counter(name string) Counter
	// Gauge returns a last-value instrument identified by name.
	Gauge(name string) Gauge
}

type Counter interface {
	Add(delta int64, labels ...string)
}

type Gauge interface {
	Set(value int64, labels ...string)
}

// NoopMeter discards every metric. It is the default when no Meter is
// supplied.
var NoopMeter Meter = noopMeter{}

type noopMeter struct{}

func (noopMeter) Counter(string) Counter { return noopInstrument{} }
func (noopMeter) Gauge(string) Gauge     { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(int64, ...string) {}
func (noopInstrument) Set(int64, ...string) {}
