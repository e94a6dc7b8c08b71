// Package dirfiles implements the directory-of-files provider of
// spec.md §4.2: a non-recursive listing where each regular, non-hidden
// file's name is the encoded key and its contents are the value.
package dirfiles

import (
	"context"
	"strings"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/internal/textvalue"
)

// Options configures construction.
type Options struct {
	// Separator splits array-typed file contents. Defaults to "," when
	// empty.
	Separator string
	// SecretsSpecifier controls which keys are tagged secret; nil defaults
	// to SecretsAll, matching spec.md §4.2's stated default.
	SecretsSpecifier *confstack.SecretsSpecifier[string, []byte]
}

// Provider is an immutable snapshot of a directory's top-level regular
// files, read once at construction.
type Provider struct {
	name      string
	contents  map[string][]byte
	separator string
	secrets   confstack.SecretsSpecifier[string, []byte]
}

var _ confstack.Provider = (*Provider)(nil)

// New reads every non-hidden regular file directly under dir via fs,
// building an immutable provider. Hidden files (leading ".") are ignored;
// non-regular entries (directories, symlinks, etc.) are skipped.
func New(name string, dir string, fs confstack.FileSystem, opts Options) (*Provider, error) {
	ctx := context.Background()
	names, err := fs.ListFileNames(ctx, dir)
	if err != nil {
		return nil, err
	}

	sep := opts.Separator
	if sep == "" {
		sep = ","
	}
	secrets := confstack.SecretsAll[string, []byte]()
	if opts.SecretsSpecifier != nil {
		secrets = *opts.SecretsSpecifier
	}

	contents := make(map[string][]byte, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, ".") {
			continue
		}
		data, err := fs.FileContents(ctx, dir+"/"+n)
		if err != nil {
			return nil, err
		}
		contents[n] = data
	}

	return &Provider{name: name, contents: contents, separator: sep, secrets: secrets}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeDirFile(key)
	data, ok := p.contents[encoded]
	if !ok {
		return confstack.Miss(encoded), nil
	}

	var content confstack.ConfigContent
	var err error
	if typ == confstack.TypeBytes {
		content = confstack.NewBytesContent(data)
	} else {
		content, err = textvalue.Parse(strings.TrimSpace(string(data)), typ, p.separator)
	}
	if err != nil {
		return confstack.Miss(encoded), nil
	}

	value := confstack.NewConfigValue(content).WithSecret(p.secrets.IsSecret(encoded, data))
	return confstack.Hit(encoded, value), nil
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
