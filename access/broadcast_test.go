package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapoio/confstack"
)

func TestBroadcastReporter_ForwardsToEveryUpstream(t *testing.T) {
	var a, b []confstack.AccessEvent
	r := NewBroadcast(
		confstack.AccessReporterFunc(func(e confstack.AccessEvent) { a = append(a, e) }),
		confstack.AccessReporterFunc(func(e confstack.AccessEvent) { b = append(b, e) }),
	)

	event := confstack.AccessEvent{Metadata: confstack.AccessMetadata{Kind: confstack.AccessGet}}
	r.Report(event)

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestNewBroadcast_PanicsOnEmptyUpstreams(t *testing.T) {
	assert.Panics(t, func() { NewBroadcast() })
}
