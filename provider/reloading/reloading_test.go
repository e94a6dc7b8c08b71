package reloading

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

type fakeFS struct {
	mu      sync.Mutex
	data    []byte
	modTime time.Time
	path    string
}

func (f *fakeFS) FileContents(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data, nil
}
func (f *fakeFS) LastModified(context.Context, string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modTime, nil
}
func (f *fakeFS) ListFileNames(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeFS) ResolveSymlinks(_ context.Context, path string) (string, error) {
	return path, nil
}

func (f *fakeFS) update(data []byte, modTime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
	f.modTime = modTime
}

type fakeParser struct{}

func (fakeParser) Parse(data []byte, _ confstack.ParserOptions) (confstack.Snapshot, error) {
	return &fakeSnapshot{value: string(data)}, nil
}

type fakeSnapshot struct{ value string }

func (s *fakeSnapshot) Name() string { return "reloading" }

func (s *fakeSnapshot) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeDot(key)
	if key.Dotted() != "value" {
		return confstack.Miss(encoded), nil
	}
	return confstack.Hit(encoded, confstack.NewConfigValue(confstack.NewStringContent(s.value))), nil
}

func TestNew_ParsesInitialSnapshot(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("value"), confstack.TypeString)
	require.NoError(t, err)
	require.True(t, r.Found())
	s, _ := r.Value.Content.String()
	assert.Equal(t, "v1", s)
}

func TestReloadIfNeeded_NoOpWhenUnchanged(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	err = p.ReloadIfNeeded(context.Background())
	require.NoError(t, err)

	r, _ := p.Value(confstack.NewAbsoluteConfigKey("value"), confstack.TypeString)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "v1", s)
}

func TestReloadIfNeeded_SwapsSnapshotOnChange(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	fs.update([]byte("v2"), time.Unix(2000, 0))
	require.NoError(t, p.ReloadIfNeeded(context.Background()))

	r, _ := p.Value(confstack.NewAbsoluteConfigKey("value"), confstack.TypeString)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "v2", s)
}

func TestWatchValue_NotifiesOnlyOnActualChange(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan confstack.WatchResult, 8)
	go func() {
		_ = p.WatchValue(ctx, confstack.NewAbsoluteConfigKey("value"), confstack.TypeString, func(ch <-chan confstack.WatchResult) {
			for v := range ch {
				received <- v
			}
		})
	}()

	select {
	case first := <-received:
		s, _ := first.Result.Value.Content.String()
		assert.Equal(t, "v1", s)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial watch value")
	}

	fs.update([]byte("v1"), time.Unix(1500, 0))
	require.NoError(t, p.ReloadIfNeeded(ctx))

	select {
	case unexpected := <-received:
		t.Fatalf("unexpected notification for unchanged value: %+v", unexpected)
	case <-time.After(100 * time.Millisecond):
	}

	fs.update([]byte("v2"), time.Unix(2000, 0))
	require.NoError(t, p.ReloadIfNeeded(ctx))

	select {
	case second := <-received:
		s, _ := second.Result.Value.Content.String()
		assert.Equal(t, "v2", s)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for updated watch value")
	}
}

func TestWatchSnapshot_NotifiesUnconditionallyOnReload(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan confstack.Snapshot, 8)
	go func() {
		_ = p.WatchSnapshot(ctx, func(ch <-chan confstack.Snapshot) {
			for v := range ch {
				received <- v
			}
		})
	}()
	<-received // initial

	fs.update([]byte("v2"), time.Unix(2000, 0))
	require.NoError(t, p.ReloadIfNeeded(ctx))

	select {
	case snap := <-received:
		assert.Equal(t, "reloading", snap.Name())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reloaded snapshot notification")
	}
}

func TestFetchValue_UnchangedFileFetchesWithoutError(t *testing.T) {
	fs := &fakeFS{data: []byte("v1"), modTime: time.Unix(1000, 0)}
	p, err := New("file", "/conf", fs, fakeParser{}, Options{})
	require.NoError(t, err)

	_, err = p.FetchValue(context.Background(), confstack.NewAbsoluteConfigKey("value"), confstack.TypeString)
	require.NoError(t, err, "no change means reload is a no-op and fetch succeeds")
}
