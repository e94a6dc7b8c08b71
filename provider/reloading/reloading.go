// Package reloading implements the ReloadingFileProvider of spec.md §4.5
// (C7): a file-backed provider whose snapshot is refreshed by a poll loop,
// with per-key and per-snapshot watcher fan-out on change. The mutex/poll
// shape is grounded on the teacher's adapter/viper provider's watch loop,
// reworked from an fsnotify-event trigger to the spec's deterministic
// polling-interval trigger.
package reloading

import (
	"context"
	"sync"
	"time"

	"github.com/mapoio/confstack"
)

// Options configures construction. PollInterval is not read by New or Run;
// Run takes its poll interval as an argument.
type Options struct {
	ParserOptions *confstack.ParserOptions
	PollInterval  time.Duration
	Logger        confstack.Logger
	Meter         confstack.Meter
}

type watcherState struct {
	realPath string
	modTime  time.Time
}

// Provider is the ReloadingFileProvider: a mutable snapshot refreshed by
// periodic polling, with change-aware watcher fan-out.
type Provider struct {
	name   string
	path   string
	fs     confstack.FileSystem
	parser confstack.Parser
	opts   confstack.ParserOptions
	logger confstack.Logger
	meter  confstack.Meter

	mu       sync.Mutex
	snap     confstack.Snapshot
	state    watcherState
	fileSize int

	valueWatchers    map[string]map[uint64]chan confstack.WatchResult
	watchedKeys      map[string]confstack.AbsoluteConfigKey
	snapshotWatchers map[uint64]chan confstack.Snapshot
	nextWatcherID    uint64

	reloadCount int64
	tickCount   int64
}

var _ confstack.Provider = (*Provider)(nil)

// New constructs a Provider, resolving symlinks, reading the file, and
// parsing an initial snapshot. It does not start the poll loop — call Run
// in a goroutine/service to do that.
func New(name, path string, fs confstack.FileSystem, parser confstack.Parser, opts Options) (*Provider, error) {
	ctx := context.Background()

	realPath, err := fs.ResolveSymlinks(ctx, path)
	if err != nil {
		return nil, err
	}
	modTime, err := fs.LastModified(ctx, realPath)
	if err != nil {
		return nil, err
	}
	data, err := fs.FileContents(ctx, realPath)
	if err != nil {
		return nil, err
	}

	parserOpts := confstack.DefaultParserOptions()
	if opts.ParserOptions != nil {
		parserOpts = *opts.ParserOptions
	}
	snap, err := parser.Parse(data, parserOpts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = confstack.NoopLogger
	}
	meter := opts.Meter
	if meter == nil {
		meter = confstack.NoopMeter
	}
	meter.Gauge("confstack_reloading_file_size_bytes").Set(int64(len(data)), name)

	return &Provider{
		name:             name,
		path:             path,
		fs:               fs,
		parser:           parser,
		opts:             parserOpts,
		logger:           logger,
		meter:            meter,
		snap:             snap,
		state:            watcherState{realPath: realPath, modTime: modTime},
		fileSize:         len(data),
		valueWatchers:    make(map[string]map[uint64]chan confstack.WatchResult),
		watchedKeys:      make(map[string]confstack.AbsoluteConfigKey),
		snapshotWatchers: make(map[uint64]chan confstack.Snapshot),
	}, nil
}

func (p *Provider) Name() string { return p.name }

// Run executes the poll loop (spec.md §4.5's "poll loop (service)"),
// calling ReloadIfNeeded on every tick until ctx is cancelled.
func (p *Provider) Run(ctx context.Context, pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tickCount++
			if err := p.ReloadIfNeeded(ctx); err != nil {
				p.logger.Warn("confstack: reload failed", "provider", p.name, "error", err)
			}
		}
	}
}

// ReloadIfNeeded implements the eight-step algorithm of spec.md §4.5.
func (p *Provider) ReloadIfNeeded(ctx context.Context) error {
	// Step 1: probe outside the lock.
	candRealPath, err := p.fs.ResolveSymlinks(ctx, p.path)
	if err != nil {
		return err
	}
	candModTime, err := p.fs.LastModified(ctx, candRealPath)
	if err != nil {
		return err
	}

	// Step 2: compare against stored state; bail out if unchanged.
	p.mu.Lock()
	origState := p.state
	unchanged := origState.realPath == candRealPath && origState.modTime.Equal(candModTime)
	p.mu.Unlock()
	if unchanged {
		return nil
	}

	// Step 3: load and parse outside the lock.
	data, err := p.fs.FileContents(ctx, candRealPath)
	if err != nil {
		return err
	}
	newSnapshot, err := p.parser.Parse(data, p.opts)
	if err != nil {
		return err
	}

	// Step 4: race-loss check.
	p.mu.Lock()
	if p.state != origState {
		p.mu.Unlock()
		return nil
	}

	// Step 5: swap snapshot, update state, capture watcher fan-out plan.
	oldSnapshot := p.snap
	p.snap = newSnapshot
	p.state = watcherState{realPath: candRealPath, modTime: candModTime}
	p.fileSize = len(data)
	p.reloadCount++

	type valueFanout struct {
		sig     string
		key     confstack.AbsoluteConfigKey
		sinks   []chan confstack.WatchResult
		oldR    confstack.LookupResult
		oldErr  error
		newR    confstack.LookupResult
		newErr  error
	}
	var valueFanouts []valueFanout
	for sig, key := range p.watchedKeys {
		sinks, ok := p.valueWatchers[sig]
		if !ok || len(sinks) == 0 {
			continue
		}
		oldR, oldErr := oldSnapshot.Value(key, confstack.TypeString)
		newR, newErr := newSnapshot.Value(key, confstack.TypeString)
		chans := make([]chan confstack.WatchResult, 0, len(sinks))
		for _, ch := range sinks {
			chans = append(chans, ch)
		}
		valueFanouts = append(valueFanouts, valueFanout{sig: sig, key: key, sinks: chans, oldR: oldR, oldErr: oldErr, newR: newR, newErr: newErr})
	}

	snapshotSinks := make([]chan confstack.Snapshot, 0, len(p.snapshotWatchers))
	for _, ch := range p.snapshotWatchers {
		snapshotSinks = append(snapshotSinks, ch)
	}
	watcherCount := len(p.snapshotWatchers)
	for _, set := range p.valueWatchers {
		watcherCount += len(set)
	}
	p.mu.Unlock()

	// Step 6: notify per-key watchers whose value actually changed.
	for _, vf := range valueFanouts {
		if lookupOutcomesEqual(vf.oldR, vf.oldErr, vf.newR, vf.newErr) {
			continue
		}
		freshR, freshErr := newSnapshot.Value(vf.key, confstack.TypeString)
		for _, ch := range vf.sinks {
			sendWatchResultDropOldest(ch, confstack.WatchResult{Result: freshR, Err: freshErr})
		}
	}

	// Step 7: notify every snapshot watcher unconditionally.
	for _, ch := range snapshotSinks {
		sendSnapshotDropOldest(ch, newSnapshot)
	}

	// Step 8: metrics.
	p.meter.Counter("confstack_reloading_reload_total").Add(1, p.name)
	p.meter.Gauge("confstack_reloading_file_size_bytes").Set(int64(len(data)), p.name)
	p.meter.Gauge("confstack_reloading_watcher_count").Set(int64(watcherCount), p.name)

	return nil
}

// lookupOutcomesEqual implements the §4.5 step 6 change-detection rule:
// (Ok,Ok) changed iff not equal; (Err,Err) never reported changed (a
// repeated failure is not re-notified); mixed is always changed.
func lookupOutcomesEqual(oldR confstack.LookupResult, oldErr error, newR confstack.LookupResult, newErr error) bool {
	if oldErr != nil && newErr != nil {
		return true
	}
	if (oldErr != nil) != (newErr != nil) {
		return false
	}
	if oldR.Found() != newR.Found() {
		return false
	}
	if !oldR.Found() {
		return true
	}
	return oldR.Value.Content.Equal(newR.Value.Content) && oldR.Value.IsSecret == newR.Value.IsSecret
}

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	p.mu.Lock()
	snap := p.snap
	p.mu.Unlock()
	return snap.Value(key, typ)
}

// FetchValue reloads (if needed) before reading, propagating any reload
// error to the caller (spec.md §4.5's fetch_value contract).
func (p *Provider) FetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	if err := p.ReloadIfNeeded(ctx); err != nil {
		return confstack.LookupResult{}, err
	}
	return p.Value(key, typ)
}

// WatchValue registers a buffer-1, drop-oldest sink for key, yielding the
// current value first.
func (p *Provider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	sig := key.Signature()
	ch := make(chan confstack.WatchResult, 1)

	p.mu.Lock()
	id := p.nextWatcherID
	p.nextWatcherID++
	if p.valueWatchers[sig] == nil {
		p.valueWatchers[sig] = make(map[uint64]chan confstack.WatchResult)
	}
	p.valueWatchers[sig][id] = ch
	p.watchedKeys[sig] = key
	initial, initialErr := p.snap.Value(key, typ)
	p.mu.Unlock()

	ch <- confstack.WatchResult{Result: initial, Err: initialErr}

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
		delete(p.watchedKeys, sig)
	}
	p.mu.Unlock()
	return nil
}

func (p *Provider) Snapshot() confstack.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// WatchSnapshot registers a buffer-1, drop-oldest snapshot sink, yielding
// the current snapshot first.
func (p *Provider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	ch := make(chan confstack.Snapshot, 1)

	p.mu.Lock()
	id := p.nextWatcherID
	p.nextWatcherID++
	p.snapshotWatchers[id] = ch
	initial := p.snap
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
