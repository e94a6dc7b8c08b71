package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestProvider_ValueHitAndMiss(t *testing.T) {
	fooKey := confstack.NewAbsoluteConfigKey("foo")
	p := New("A", Entry{Key: fooKey, Value: confstack.NewConfigValue(confstack.NewStringContent("a"))})

	result, err := p.Value(fooKey, confstack.TypeString)
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, "foo", result.EncodedKey)
	s, err := result.Value.Content.String()
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	missResult, err := p.Value(confstack.NewAbsoluteConfigKey("bar"), confstack.TypeString)
	require.NoError(t, err)
	assert.False(t, missResult.Found())
}

func TestProvider_Idempotent_P1(t *testing.T) {
	key := confstack.NewAbsoluteConfigKey("foo")
	p := New("A", Entry{Key: key, Value: confstack.NewConfigValue(confstack.NewIntContent(1))})

	r1, _ := p.Value(key, confstack.TypeInt)
	r2, _ := p.Value(key, confstack.TypeInt)
	assert.Equal(t, r1, r2)
}

func TestMutableProvider_SetValueBroadcastsToWatchers(t *testing.T) {
	p := NewMutable("M")
	key := confstack.NewAbsoluteConfigKey("foo")
	p.SetValue(key, confstack.NewConfigValue(confstack.NewStringContent("v1")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan confstack.WatchResult, 4)
	go func() {
		_ = p.WatchValue(ctx, key, confstack.TypeString, func(ch <-chan confstack.WatchResult) {
			for v := range ch {
				received <- v
				if len(received) == 2 {
					return
				}
			}
		})
	}()

	// first element must equal the current value (P5)
	select {
	case first := <-received:
		s, _ := first.Result.Value.Content.String()
		assert.Equal(t, "v1", s)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial watch value")
	}

	p.SetValue(key, confstack.NewConfigValue(confstack.NewStringContent("v2")))

	select {
	case second := <-received:
		s, _ := second.Result.Value.Content.String()
		assert.Equal(t, "v2", s)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for updated watch value")
	}
}

func TestMutableProvider_Snapshot_Immutable(t *testing.T) {
	p := NewMutable("M")
	key := confstack.NewAbsoluteConfigKey("foo")
	p.SetValue(key, confstack.NewConfigValue(confstack.NewStringContent("v1")))

	snap := p.Snapshot()
	p.SetValue(key, confstack.NewConfigValue(confstack.NewStringContent("v2")))

	r, _ := snap.Value(key, confstack.TypeString)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "v1", s, "snapshot must remain observationally immutable (V3)")
}
