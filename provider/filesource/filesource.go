// Package filesource implements the file-backed provider of spec.md §4.2:
// a single file, parsed once at construction via the Parser and FileSystem
// collaborators, exposed as a static Provider.
package filesource

import (
	"context"

	"github.com/mapoio/confstack"
)

// Options configures construction.
type Options struct {
	// AllowMissing, when true, produces an empty snapshot instead of an
	// error if Path does not exist.
	AllowMissing bool
	// ParserOptions is passed through to the Parser. Nil uses
	// confstack.DefaultParserOptions().
	ParserOptions *confstack.ParserOptions
}

// Provider wraps a single parsed Snapshot, read once at construction.
type Provider struct {
	name string
	snap confstack.Snapshot
}

var _ confstack.Provider = (*Provider)(nil)

// New reads and parses path once via fs and parser.
func New(name string, path string, fs confstack.FileSystem, parser confstack.Parser, opts Options) (*Provider, error) {
	ctx := context.Background()
	data, err := fs.FileContents(ctx, path)
	if err != nil {
		if _, ok := err.(*confstack.FileNotFound); ok && opts.AllowMissing {
			return &Provider{name: name, snap: emptySnapshot{name: name}}, nil
		}
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
	return &Provider{name: name, snap: snap}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return p.snap.Value(key, typ)
}

func (p *Provider) FetchValue(_ context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return confstack.DefaultFetchValue(p, key, typ)
}

func (p *Provider) WatchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType, handler func(<-chan confstack.WatchResult)) error {
	return confstack.DefaultWatchValue(ctx, p, key, typ, handler)
}

func (p *Provider) Snapshot() confstack.Snapshot { return p.snap }

func (p *Provider) WatchSnapshot(ctx context.Context, handler func(<-chan confstack.Snapshot)) error {
	return confstack.DefaultWatchSnapshot(ctx, p, handler)
}

type emptySnapshot struct{ name string }

func (e emptySnapshot) Name() string { return e.name }

func (e emptySnapshot) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	return confstack.Miss(confstack.EncodeDot(key)), nil
}
