// Package access implements the access-reporter sinks of spec.md §4.7 (C9):
// a sequential broadcaster, a zap-backed structured logging sink, and a
// file sink with glyph-annotated single-line records.
package access

import "github.com/mapoio/confstack"

// BroadcastReporter forwards every AccessEvent to each upstream reporter in
// order.
type BroadcastReporter struct {
	upstreams []confstack.AccessReporter
}

var _ confstack.AccessReporter = (*BroadcastReporter)(nil)

// NewBroadcast builds a BroadcastReporter over a non-empty list of
// upstreams. NewBroadcast panics if upstreams is empty, since a reporter
// with nowhere to forward has no meaningful use.
func NewBroadcast(upstreams ...confstack.AccessReporter) *BroadcastReporter {
	if len(upstreams) == 0 {
		panic("access: NewBroadcast requires at least one upstream reporter")
	}
	cp := make([]confstack.AccessReporter, len(upstreams))
	copy(cp, upstreams)
	return &BroadcastReporter{upstreams: cp}
}

func (b *BroadcastReporter) Report(event confstack.AccessEvent) {
	for _, u := range b.upstreams {
		u.Report(event)
	}
}
