// Package envvar implements the environment-variable provider of
// spec.md §4.2: a snapshot of the process environment (or a supplied map),
// optionally merged with a .env file, grounded on the teacher's viper-based
// provider's env-binding behavior but reimplemented directly since no
// typed-parse layer is needed beyond the shared textvalue grammar.
package envvar

import (
	"context"
	"os"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/internal/textvalue"
)

// Options configures construction of a Provider.
type Options struct {
	// Separator splits array values. Defaults to "," when empty.
	Separator string
	// DotFilePath, if non-empty, is parsed as a .env file and merged over
	// the base environment (file entries win on key collision, matching
	// the teacher's "explicit config wins over ambient env" convention).
	DotFilePath string
	// AllowMissingDotFile controls whether a missing DotFilePath is an
	// error or silently ignored.
	AllowMissingDotFile bool
}

// Provider is an immutable snapshot of environment-style KEY=VALUE string
// pairs, with typed access per spec.md §4.2's parsing grammar.
type Provider struct {
	name      string
	values    map[string]string
	separator string
}

var _ confstack.Provider = (*Provider)(nil)

// New builds a Provider from the current process environment (os.Environ),
// optionally merged with a .env file per opts.
func New(name string, opts Options) (*Provider, error) {
	return newFromPairs(name, os.Environ(), opts)
}

// NewFromMap builds a Provider from a supplied map instead of the real
// process environment — used in tests and by callers assembling a synthetic
// environment.
func NewFromMap(name string, env map[string]string, opts Options) (*Provider, error) {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	return newFromPairs(name, pairs, opts)
}

func newFromPairs(name string, pairs []string, opts Options) (*Provider, error) {
	sep := opts.Separator
	if sep == "" {
		sep = ","
	}
	values := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		values[k] = v
	}

	if opts.DotFilePath != "" {
		fileValues, err := parseDotEnv(opts.DotFilePath)
		if err != nil {
			if os.IsNotExist(err) && opts.AllowMissingDotFile {
				fileValues = nil
			} else {
				return nil, &confstack.IoError{Path: opts.DotFilePath, Cause: err}
			}
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	return &Provider{name: name, values: values, separator: sep}, nil
}

// parseDotEnv loads a .env file via gotenv, which implements the grammar of
// spec.md §4.2: KEY=VALUE lines, "#" comments, blank lines ignored,
// malformed lines silently dropped.
func parseDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gotenv.Parse(f), nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeScreamingSnake(key)
	raw, ok := p.values[encoded]
	if !ok {
		return confstack.Miss(encoded), nil
	}
	content, err := textvalue.Parse(raw, typ, p.separator)
	if err != nil {
		return confstack.Miss(encoded), nil
	}
	return confstack.Hit(encoded, confstack.NewConfigValue(content)), nil
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

func (s *snapshot) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	return (*Provider)(s).Value(key, typ)
}
