// Package viperprovider wraps a caller-supplied *viper.Viper as a
// confstack.Provider, bridging viper's WatchConfig/OnConfigChange (itself
// backed by fsnotify) into the core WatchValue/WatchSnapshot channel
// contract.
package viperprovider

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mapoio/confstack"
)

// Provider adapts a *viper.Viper. Construct one per viper instance; Watch
// registration with viper happens lazily, on the first WatchValue/
// WatchSnapshot call, mirroring the callback-registry pattern the teacher
// codebase uses for its own viper adapter.
type Provider struct {
	name string
	v    *viper.Viper

	mu               sync.Mutex
	watchStarted     bool
	nextWatcherID    uint64
	valueWatchers    map[string]map[uint64]chan confstack.WatchResult
	watchedKeys      map[string]confstack.AbsoluteConfigKey
	watchedTypes     map[string]confstack.ConfigType
	snapshotWatchers map[uint64]chan confstack.Snapshot
	lastValues       map[string]confstack.LookupResult
}

var _ confstack.Provider = (*Provider)(nil)

// New wraps v. name identifies the provider in access reports and
// MultiProvider breakdowns.
func New(name string, v *viper.Viper) *Provider {
	return &Provider{
		name:             name,
		v:                v,
		valueWatchers:    make(map[string]map[uint64]chan confstack.WatchResult),
		watchedKeys:      make(map[string]confstack.AbsoluteConfigKey),
		watchedTypes:     make(map[string]confstack.ConfigType),
		snapshotWatchers: make(map[uint64]chan confstack.Snapshot),
		lastValues:       make(map[string]confstack.LookupResult),
	}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	dotted := confstack.EncodeDot(key)
	if !p.v.IsSet(dotted) {
		return confstack.Miss(dotted), nil
	}
	content, err := readContent(p.v, dotted, typ)
	if err != nil {
		return confstack.LookupResult{}, err
	}
	return confstack.Hit(dotted, confstack.NewConfigValue(content)), nil
}

func (p *Provider) FetchValue(_ context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return p.Value(key, typ)
}

func (p *Provider) Snapshot() confstack.Snapshot {
	return &snapshot{v: p.v, name: p.name}
}

func (p *Provider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	dotted := confstack.EncodeDot(key)

	p.mu.Lock()
	p.ensureWatching()
	id := p.nextWatcherID
	p.nextWatcherID++
	ch := make(chan confstack.WatchResult, 1)
	if p.valueWatchers[dotted] == nil {
		p.valueWatchers[dotted] = make(map[uint64]chan confstack.WatchResult)
	}
	p.valueWatchers[dotted][id] = ch
	p.watchedKeys[dotted] = key
	p.watchedTypes[dotted] = typ
	initial, err := p.Value(key, typ)
	p.lastValues[dotted] = initial
	p.mu.Unlock()

	ch <- confstack.WatchResult{Result: initial, Err: err}

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
	delete(p.valueWatchers[dotted], id)
	if len(p.valueWatchers[dotted]) == 0 {
		delete(p.valueWatchers, dotted)
	}
	p.mu.Unlock()
	return nil
}

func (p *Provider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	p.mu.Lock()
	p.ensureWatching()
	id := p.nextWatcherID
	p.nextWatcherID++
	ch := make(chan confstack.Snapshot, 1)
	p.snapshotWatchers[id] = ch
	p.mu.Unlock()

	ch <- p.Snapshot()

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

// ensureWatching registers viper's reload callback exactly once, per the
// first-callback-starts-watching pattern. Must be called with p.mu held.
func (p *Provider) ensureWatching() {
	if p.watchStarted {
		return
	}
	p.watchStarted = true
	p.v.OnConfigChange(func(_ fsnotify.Event) {
		p.onConfigChange()
	})
	p.v.WatchConfig()
}

func (p *Provider) onConfigChange() {
	p.mu.Lock()
	type fanout struct {
		sinks []chan confstack.WatchResult
		fresh confstack.WatchResult
	}
	var fanouts []fanout
	for dotted, key := range p.watchedKeys {
		typ := p.watchedTypes[dotted]
		fresh, err := p.Value(key, typ)
		old := p.lastValues[dotted]
		if outcomesEqual(old, fresh) {
			continue
		}
		p.lastValues[dotted] = fresh
		sinks := make([]chan confstack.WatchResult, 0, len(p.valueWatchers[dotted]))
		for _, ch := range p.valueWatchers[dotted] {
			sinks = append(sinks, ch)
		}
		fanouts = append(fanouts, fanout{sinks: sinks, fresh: confstack.WatchResult{Result: fresh, Err: err}})
	}
	snapSinks := make([]chan confstack.Snapshot, 0, len(p.snapshotWatchers))
	for _, ch := range p.snapshotWatchers {
		snapSinks = append(snapSinks, ch)
	}
	snap := p.Snapshot()
	p.mu.Unlock()

	for _, f := range fanouts {
		for _, ch := range f.sinks {
			sendWatchResultDropOldest(ch, f.fresh)
		}
	}
	for _, ch := range snapSinks {
		sendSnapshotDropOldest(ch, snap)
	}
}

func outcomesEqual(old, fresh confstack.LookupResult) bool {
	if old.Found() != fresh.Found() {
		return false
	}
	if !old.Found() {
		return true
	}
	return old.Value.Content.Equal(fresh.Value.Content) && old.Value.IsSecret == fresh.Value.IsSecret
}

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

type snapshot struct {
	v    *viper.Viper
	name string
}

var _ confstack.Snapshot = (*snapshot)(nil)

func (s *snapshot) Name() string { return s.name }

func (s *snapshot) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	dotted := confstack.EncodeDot(key)
	if !s.v.IsSet(dotted) {
		return confstack.Miss(dotted), nil
	}
	content, err := readContent(s.v, dotted, typ)
	if err != nil {
		return confstack.LookupResult{}, err
	}
	return confstack.Hit(dotted, confstack.NewConfigValue(content)), nil
}

func readContent(v *viper.Viper, dotted string, typ confstack.ConfigType) (confstack.ConfigContent, error) {
	switch typ {
	case confstack.TypeString:
		return confstack.NewStringContent(v.GetString(dotted)), nil
	case confstack.TypeInt:
		return confstack.NewIntContent(v.GetInt64(dotted)), nil
	case confstack.TypeDouble:
		return confstack.NewDoubleContent(v.GetFloat64(dotted)), nil
	case confstack.TypeBool:
		return confstack.NewBoolContent(v.GetBool(dotted)), nil
	case confstack.TypeStringArray:
		return confstack.NewStringArrayContent(v.GetStringSlice(dotted)), nil
	case confstack.TypeIntArray:
		vals := v.GetIntSlice(dotted)
		out := make([]int64, len(vals))
		for i, n := range vals {
			out[i] = int64(n)
		}
		return confstack.NewIntArrayContent(out), nil
	default:
		return confstack.ConfigContent{}, &confstack.TypeMismatch{Requested: typ}
	}
}
