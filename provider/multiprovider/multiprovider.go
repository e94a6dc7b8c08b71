// Package multiprovider implements the precedence-ordered provider chain
// of spec.md §4.3 (C5): an ordered, non-empty list of child providers where
// the first child to return a non-null value or an error wins, and no
// further child is consulted after that.
package multiprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/internal/combinelatest"
)

// MultiProvider resolves lookups by consulting its children in order,
// short-circuiting on the first error or first non-null value.
type MultiProvider struct {
	name     string
	children []confstack.Provider
}

var _ confstack.Provider = (*MultiProvider)(nil)

// New builds a MultiProvider over children, consulted in the given order.
// children must be non-empty; New panics otherwise, since an empty
// precedence chain has no meaningful resolution semantics.
func New(name string, children ...confstack.Provider) *MultiProvider {
	if len(children) == 0 {
		panic("multiprovider: New requires at least one child provider")
	}
	cp := make([]confstack.Provider, len(children))
	copy(cp, children)
	return &MultiProvider{name: name, children: cp}
}

func (m *MultiProvider) Name() string { return m.name }

// resolve implements the get/fetch precedence algorithm of spec.md §4.3:
// an error from a provider must not be masked by a lower-precedence
// success, so it both aborts the loop and is surfaced to the caller.
func resolve(lookup func(p confstack.Provider) (confstack.LookupResult, error), children []confstack.Provider) ([]confstack.ProviderResult, confstack.LookupResult, error) {
	results := make([]confstack.ProviderResult, 0, len(children))
	for _, p := range children {
		r, err := lookup(p)
		if err != nil {
			results = append(results, confstack.ProviderResult{ProviderName: p.Name(), Result: r, Err: err})
			return results, r, err
		}
		results = append(results, confstack.ProviderResult{ProviderName: p.Name(), Result: r})
		if r.Found() {
			return results, r, nil
		}
	}
	return results, confstack.Miss(""), nil
}

func (m *MultiProvider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	_, r, err := resolve(func(p confstack.Provider) (confstack.LookupResult, error) {
		return p.Value(key, typ)
	}, m.children)
	return r, err
}

func (m *MultiProvider) FetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	_, r, err := resolve(func(p confstack.Provider) (confstack.LookupResult, error) {
		return p.FetchValue(ctx, key, typ)
	}, m.children)
	return r, err
}

// ResolveValue exposes the full per-provider result list alongside the
// resolved value, for callers (the reader façade) that need to populate an
// AccessEvent.
func (m *MultiProvider) ResolveValue(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error) {
	return resolve(func(p confstack.Provider) (confstack.LookupResult, error) {
		return p.Value(key, typ)
	}, m.children)
}

// ResolveFetchValue is the fetch analogue of ResolveValue.
func (m *MultiProvider) ResolveFetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error) {
	return resolve(func(p confstack.Provider) (confstack.LookupResult, error) {
		return p.FetchValue(ctx, key, typ)
	}, m.children)
}

func (m *MultiProvider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams := make([]<-chan confstack.WatchResult, len(m.children))
	errs := make([]error, len(m.children))
	done := make(chan struct{}, len(m.children))

	for i, child := range m.children {
		i, child := i, child
		ch := make(chan confstack.WatchResult, 1)
		streams[i] = ch
		go func() {
			defer close(ch)
			defer func() { done <- struct{}{} }()
			errs[i] = child.WatchValue(childCtx, key, typ, func(upstream <-chan confstack.WatchResult) {
				for wr := range upstream {
					select {
					case ch <- wr:
					case <-childCtx.Done():
						return
					}
				}
			})
		}()
	}

	combined := combinelatest.Combine(childCtx, streams)
	reduced := make(chan confstack.WatchResult, 1)
	go func() {
		defer close(reduced)
		for tuple := range combined {
			r, err := reducePrecedence(tuple)
			select {
			case reduced <- confstack.WatchResult{Result: r, Err: err}:
			case <-childCtx.Done():
				return
			}
		}
	}()

	handler(reduced)
	cancel()
	for range m.children {
		<-done
	}
	return errors.Join(errs...)
}

// reducePrecedence applies the §4.3 precedence rule to one emitted
// combine-latest tuple of per-child WatchResults.
func reducePrecedence(tuple []confstack.WatchResult) (confstack.LookupResult, error) {
	for _, wr := range tuple {
		if wr.Err != nil {
			return wr.Result, wr.Err
		}
		if wr.Result.Found() {
			return wr.Result, nil
		}
	}
	if len(tuple) == 0 {
		return confstack.Miss(""), nil
	}
	return confstack.Miss(tuple[0].Result.EncodedKey), nil
}

func (m *MultiProvider) Snapshot() confstack.Snapshot {
	children := make([]confstack.Snapshot, len(m.children))
	for i, p := range m.children {
		children[i] = p.Snapshot()
	}
	return &MultiSnapshot{name: m.name, children: children}
}

func (m *MultiProvider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams := make([]<-chan confstack.Snapshot, len(m.children))
	errs := make([]error, len(m.children))
	done := make(chan struct{}, len(m.children))

	for i, child := range m.children {
		i, child := i, child
		ch := make(chan confstack.Snapshot, 1)
		streams[i] = ch
		go func() {
			defer close(ch)
			defer func() { done <- struct{}{} }()
			errs[i] = child.WatchSnapshot(childCtx, func(upstream <-chan confstack.Snapshot) {
				for snap := range upstream {
					select {
					case ch <- snap:
					case <-childCtx.Done():
						return
					}
				}
			})
		}()
	}

	combined := combinelatest.Combine(childCtx, streams)
	mapped := make(chan confstack.Snapshot, 1)
	go func() {
		defer close(mapped)
		for tuple := range combined {
			select {
			case mapped <- &MultiSnapshot{name: m.name, children: tuple}:
			case <-childCtx.Done():
				return
			}
		}
	}()

	handler(mapped)
	cancel()
	for range m.children {
		<-done
	}
	return errors.Join(errs...)
}

// MultiSnapshot is the point-in-time view produced by MultiProvider.Snapshot
// and by MultiProvider.WatchSnapshot emissions: an ordered list of child
// snapshots, resolved with the same precedence rule as the live provider.
type MultiSnapshot struct {
	name     string
	children []confstack.Snapshot
}

var _ confstack.Snapshot = (*MultiSnapshot)(nil)

func (s *MultiSnapshot) Name() string { return s.name }

func (s *MultiSnapshot) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	for _, child := range s.children {
		r, err := child.Value(key, typ)
		if err != nil {
			return r, fmt.Errorf("%s: %w", child.Name(), err)
		}
		if r.Found() {
			return r, nil
		}
	}
	return confstack.Miss(""), nil
}
