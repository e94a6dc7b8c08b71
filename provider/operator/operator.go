// Package operator implements the key-mapping, prefix, and secret-marking
// provider wrappers of spec.md §4.8 (C10). Each is a newtype delegating to
// an upstream confstack.Provider — no inheritance hierarchy, just
// composition (spec.md §9).
package operator

import (
	"context"

	"github.com/mapoio/confstack"
)

// Prefix wraps an upstream provider, prepending a fixed relative key to
// every absolute key passed to Value, FetchValue and WatchValue before
// dispatching to it. Snapshot and WatchSnapshot return the upstream's
// snapshots unchanged; lookups on those snapshots are not prefixed.
type Prefix struct {
	upstream confstack.Provider
	prefix   confstack.ConfigKey
}

var _ confstack.Provider = (*Prefix)(nil)

// NewPrefix wraps upstream so every lookup is first rewritten to
// prefix.Append(key.Relative()).
func NewPrefix(upstream confstack.Provider, prefix confstack.ConfigKey) *Prefix {
	return &Prefix{upstream: upstream, prefix: prefix}
}

func (p *Prefix) rewrite(key confstack.AbsoluteConfigKey) confstack.AbsoluteConfigKey {
	return confstack.AbsoluteConfigKey{}.Append(p.prefix).Append(key.Relative())
}

func (p *Prefix) Name() string { return p.upstream.Name() }

func (p *Prefix) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return p.upstream.Value(p.rewrite(key), typ)
}

func (p *Prefix) FetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return p.upstream.FetchValue(ctx, p.rewrite(key), typ)
}

func (p *Prefix) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	return p.upstream.WatchValue(ctx, p.rewrite(key), typ, handler)
}

func (p *Prefix) Snapshot() confstack.Snapshot { return p.upstream.Snapshot() }

func (p *Prefix) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	return p.upstream.WatchSnapshot(ctx, handler)
}

// KeyMapping wraps an upstream provider with a pure function rewriting
// every absolute key passed to Value, FetchValue and WatchValue before
// dispatching to it. Snapshot and WatchSnapshot return the upstream's
// snapshots unchanged; lookups on those snapshots are not rewritten.
type KeyMapping struct {
	upstream confstack.Provider
	mapFn    func(confstack.AbsoluteConfigKey) confstack.AbsoluteConfigKey
}

var _ confstack.Provider = (*KeyMapping)(nil)

// NewKeyMapping wraps upstream, applying mapFn to every key before
// dispatch.
func NewKeyMapping(upstream confstack.Provider, mapFn func(confstack.AbsoluteConfigKey) confstack.AbsoluteConfigKey) *KeyMapping {
	return &KeyMapping{upstream: upstream, mapFn: mapFn}
}

func (k *KeyMapping) Name() string { return k.upstream.Name() }

func (k *KeyMapping) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return k.upstream.Value(k.mapFn(key), typ)
}

func (k *KeyMapping) FetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return k.upstream.FetchValue(ctx, k.mapFn(key), typ)
}

func (k *KeyMapping) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	return k.upstream.WatchValue(ctx, k.mapFn(key), typ, handler)
}

func (k *KeyMapping) Snapshot() confstack.Snapshot { return k.upstream.Snapshot() }

func (k *KeyMapping) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	return k.upstream.WatchSnapshot(ctx, handler)
}

// SecretMarking wraps an upstream provider with a predicate over absolute
// keys; values it returns are tagged secret when the predicate matches.
// Already-secret values remain secret regardless of the predicate (V4).
type SecretMarking struct {
	upstream confstack.Provider
	isSecret func(confstack.AbsoluteConfigKey) bool
}

var _ confstack.Provider = (*SecretMarking)(nil)

// NewSecretMarking wraps upstream, marking values secret when isSecret(key)
// is true.
func NewSecretMarking(upstream confstack.Provider, isSecret func(confstack.AbsoluteConfigKey) bool) *SecretMarking {
	return &SecretMarking{upstream: upstream, isSecret: isSecret}
}

func (s *SecretMarking) Name() string { return s.upstream.Name() }

func (s *SecretMarking) mark(key confstack.AbsoluteConfigKey, r confstack.LookupResult) confstack.LookupResult {
	return r.WithSecret(s.isSecret(key))
}

func (s *SecretMarking) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	r, err := s.upstream.Value(key, typ)
	if err != nil {
		return r, err
	}
	return s.mark(key, r), nil
}

func (s *SecretMarking) FetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	r, err := s.upstream.FetchValue(ctx, key, typ)
	if err != nil {
		return r, err
	}
	return s.mark(key, r), nil
}

func (s *SecretMarking) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	return s.upstream.WatchValue(ctx, key, typ, func(upstreamCh <-chan confstack.WatchResult) {
		mapped := make(chan confstack.WatchResult)
		go func() {
			defer close(mapped)
			for wr := range upstreamCh {
				if wr.Err == nil {
					wr.Result = s.mark(key, wr.Result)
				}
				mapped <- wr
			}
		}()
		handler(mapped)
	})
}

func (s *SecretMarking) Snapshot() confstack.Snapshot {
	return &secretSnapshot{upstream: s.upstream.Snapshot(), isSecret: s.isSecret}
}

func (s *SecretMarking) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	return s.upstream.WatchSnapshot(ctx, func(upstreamCh <-chan confstack.Snapshot) {
		mapped := make(chan confstack.Snapshot)
		go func() {
			defer close(mapped)
			for snap := range upstreamCh {
				mapped <- &secretSnapshot{upstream: snap, isSecret: s.isSecret}
			}
		}()
		handler(mapped)
	})
}

type secretSnapshot struct {
	upstream confstack.Snapshot
	isSecret func(confstack.AbsoluteConfigKey) bool
}

func (s *secretSnapshot) Name() string { return s.upstream.Name() }

func (s *secretSnapshot) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	r, err := s.upstream.Value(key, typ)
	if err != nil {
		return r, err
	}
	return r.WithSecret(s.isSecret(key)), nil
}
