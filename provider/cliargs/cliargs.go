// Package cliargs implements the CLI-argument provider of spec.md §4.2: a
// one-shot tokenizer over os.Args-style slices, keyed by the CLI-flag
// encoding (encode.go's EncodeCLIFlag).
package cliargs

import (
	"context"
	"strings"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/internal/textvalue"
)

// Options configures tokenization.
type Options struct {
	// Separator is both the list-value separator within an attached value
	// and the split point for a value that itself contains it. Defaults
	// to "," when empty.
	Separator string
}

// Provider is an immutable table built by tokenizing a CLI argument list.
type Provider struct {
	name      string
	values    map[string][]string
	separator string
}

var _ confstack.Provider = (*Provider)(nil)

// New tokenizes args (including the leading program name, which is
// discarded) per spec.md §4.2's tokenizer rules.
func New(name string, args []string, opts Options) *Provider {
	sep := opts.Separator
	if sep == "" {
		sep = ","
	}
	return &Provider{name: name, values: tokenize(args, sep), separator: sep}
}

// tokenize implements the rules: the first argument (program name) is
// discarded; "--flag=value" attaches value; "--flag" followed by zero or
// more non-"--" tokens attaches them all; repeated flags concatenate;
// values containing the separator are further split; tokens before the
// first flag are ignored; a lone "-" is a legal value.
func tokenize(args []string, separator string) map[string][]string {
	values := make(map[string][]string)
	if len(args) <= 1 {
		return values
	}

	rest := args[1:]
	var currentFlag string
	haveFlag := false

	flush := func(flag string, raw string) {
		if raw == "" {
			return
		}
		var parts []string
		if strings.Contains(raw, separator) {
			parts = textvalue.Split(raw, separator)
		} else {
			parts = []string{raw}
		}
		values[flag] = append(values[flag], parts...)
	}

	for _, tok := range rest {
		if strings.HasPrefix(tok, "--") {
			if eq := strings.Index(tok, "="); eq >= 0 {
				flag := tok[:eq]
				val := tok[eq+1:]
				flush(flag, val)
				haveFlag = false
				currentFlag = ""
				continue
			}
			currentFlag = tok
			haveFlag = true
			continue
		}
		if haveFlag {
			flush(currentFlag, tok)
		}
		// tokens before the first flag (haveFlag == false, currentFlag == "")
		// are ignored, including a bare "-" in that position.
	}
	return values
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeCLIFlag(key)
	parts, ok := p.values[encoded]
	if !ok || len(parts) == 0 {
		return confstack.Miss(encoded), nil
	}
	content, err := parseParts(parts, typ, p.separator)
	if err != nil {
		return confstack.Miss(encoded), nil
	}
	return confstack.Hit(encoded, confstack.NewConfigValue(content)), nil
}

func parseParts(parts []string, typ confstack.ConfigType, separator string) (confstack.ConfigContent, error) {
	switch typ {
	case confstack.TypeStringArray, confstack.TypeIntArray, confstack.TypeDoubleArray, confstack.TypeBoolArray, confstack.TypeByteChunkArray:
		return textvalue.Parse(strings.Join(parts, separator), typ, separator)
	default:
		// Scalar types use the last occurrence: repeated flags concatenate
		// their raw values, but a scalar read wants the final token.
		return textvalue.Parse(parts[len(parts)-1], typ, separator)
	}
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
