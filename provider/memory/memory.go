// Package memory implements the in-memory providers of spec.md §4.2: an
// immutable table and a mutable variant with per-key and per-snapshot
// watcher fan-out.
package memory

import (
	"context"
	"sync"

	"github.com/mapoio/confstack"
)

// Entry is one key/value pair used to seed a Provider.
type Entry struct {
	Key   confstack.AbsoluteConfigKey
	Value confstack.ConfigValue
}

// Provider is an immutable in-memory table keyed by AbsoluteConfigKey
// (including context). Lookups return the dot-encoded form of the key.
type Provider struct {
	name   string
	values map[string]confstack.ConfigValue
	encode map[string]string
}

var _ confstack.Provider = (*Provider)(nil)

// New builds an immutable in-memory provider from the given entries.
func New(name string, entries ...Entry) *Provider {
	p := &Provider{
		name:   name,
		values: make(map[string]confstack.ConfigValue, len(entries)),
		encode: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		sig := signature(e.Key)
		p.values[sig] = e.Value
		p.encode[sig] = confstack.EncodeDot(e.Key)
	}
	return p
}

func signature(key confstack.AbsoluteConfigKey) string {
	return key.Signature()
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	sig := signature(key)
	encoded := confstack.EncodeDot(key)
	if v, ok := p.values[sig]; ok {
		return confstack.Hit(encoded, v), nil
	}
	return confstack.Miss(encoded), nil
}

func (p *Provider) FetchValue(_ context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return confstack.DefaultFetchValue(p, key, typ)
}

func (p *Provider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	return confstack.DefaultWatchValue(ctx, p, key, typ, handler)
}

func (p *Provider) Snapshot() confstack.Snapshot { return (*snapshot)(p) }

func (p *Provider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	return confstack.DefaultWatchSnapshot(ctx, p, handler)
}

type snapshot Provider

func (s *snapshot) Name() string { return s.name }

func (s *snapshot) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	sig := signature(key)
	encoded := confstack.EncodeDot(key)
	if v, ok := s.values[sig]; ok {
		return confstack.Hit(encoded, v), nil
	}
	return confstack.Miss(encoded), nil
}

// MutableProvider is the mutable in-memory table: SetValue replaces an
// entry and broadcasts to any active per-key and per-snapshot watchers.
type MutableProvider struct {
	mu     sync.Mutex
	name   string
	values map[string]confstack.ConfigValue
	keys   map[string]confstack.AbsoluteConfigKey

	valueWatchers    map[string]map[uint64]chan confstack.WatchResult
	snapshotWatchers map[uint64]chan confstack.Snapshot
	nextWatcherID    uint64
}

var _ confstack.Provider = (*MutableProvider)(nil)

// NewMutable builds an empty mutable in-memory provider.
func NewMutable(name string) *MutableProvider {
	return &MutableProvider{
		name:             name,
		values:           make(map[string]confstack.ConfigValue),
		keys:             make(map[string]confstack.AbsoluteConfigKey),
		valueWatchers:    make(map[string]map[uint64]chan confstack.WatchResult),
		snapshotWatchers: make(map[uint64]chan confstack.Snapshot),
	}
}

func (p *MutableProvider) Name() string { return p.name }

// SetValue replaces key's value (or inserts it) and broadcasts the change
// to any watchers of key and to every snapshot watcher.
func (p *MutableProvider) SetValue(key confstack.AbsoluteConfigKey, value confstack.ConfigValue) {
	sig := signature(key)

	p.mu.Lock()
	p.values[sig] = value
	p.keys[sig] = key
	encoded := confstack.EncodeDot(key)
	result := confstack.Hit(encoded, value)

	var valueSinks []chan confstack.WatchResult
	if set, ok := p.valueWatchers[sig]; ok {
		valueSinks = make([]chan confstack.WatchResult, 0, len(set))
		for _, ch := range set {
			valueSinks = append(valueSinks, ch)
		}
	}
	snapshotSinks := make([]chan confstack.Snapshot, 0, len(p.snapshotWatchers))
	for _, ch := range p.snapshotWatchers {
		snapshotSinks = append(snapshotSinks, ch)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	for _, ch := range valueSinks {
		sendWatchResultDropOldest(ch, confstack.WatchResult{Result: result})
	}
	for _, ch := range snapshotSinks {
		sendSnapshotDropOldest(ch, snap)
	}
}

func (p *MutableProvider) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	sig := signature(key)
	encoded := confstack.EncodeDot(key)

	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[sig]; ok {
		return confstack.Hit(encoded, v), nil
	}
	return confstack.Miss(encoded), nil
}

func (p *MutableProvider) FetchValue(_ context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return confstack.DefaultFetchValue(p, key, typ)
}

// WatchValue registers a buffer-1, drop-oldest sink for key. The first
// element delivered is the current value (P5).
func (p *MutableProvider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	sig := signature(key)
	ch := make(chan confstack.WatchResult, 1)

	p.mu.Lock()
	id := p.nextWatcherID
	p.nextWatcherID++
	if p.valueWatchers[sig] == nil {
		p.valueWatchers[sig] = make(map[uint64]chan confstack.WatchResult)
	}
	p.valueWatchers[sig][id] = ch
	initial, _ := p.Value(key, typ)
	p.mu.Unlock()

	ch <- confstack.WatchResult{Result: initial}

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler(ch)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}

	p.mu.Lock()
	delete(p.valueWatchers[sig], id)
	if len(p.valueWatchers[sig]) == 0 {
		delete(p.valueWatchers, sig)
	}
	p.mu.Unlock()
	return nil
}

func (p *MutableProvider) Snapshot() confstack.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *MutableProvider) snapshotLocked() *mutableSnapshot {
	values := make(map[string]confstack.ConfigValue, len(p.values))
	for k, v := range p.values {
		values[k] = v
	}
	return &mutableSnapshot{name: p.name, values: values}
}

func (p *MutableProvider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	ch := make(chan confstack.Snapshot, 1)

	p.mu.Lock()
	id := p.nextWatcherID
	p.nextWatcherID++
	p.snapshotWatchers[id] = ch
	initial := p.snapshotLocked()
	p.mu.Unlock()

	ch <- initial

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler(ch)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}

	p.mu.Lock()
	delete(p.snapshotWatchers, id)
	p.mu.Unlock()
	return nil
}

type mutableSnapshot struct {
	name   string
	values map[string]confstack.ConfigValue
}

func (s *mutableSnapshot) Name() string { return s.name }

func (s *mutableSnapshot) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	sig := signature(key)
	encoded := confstack.EncodeDot(key)
	if v, ok := s.values[sig]; ok {
		return confstack.Hit(encoded, v), nil
	}
	return confstack.Miss(encoded), nil
}

// sendWatchResultDropOldest implements the "drop-oldest, keep newest 1"
// buffering policy shared with the reloading provider (spec.md §4.5).
func sendWatchResultDropOldest(ch chan confstack.WatchResult, v confstack.WatchResult) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func sendSnapshotDropOldest(ch chan confstack.Snapshot, v confstack.Snapshot) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
