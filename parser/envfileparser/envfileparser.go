// Package envfileparser implements confstack.Parser for .env-style
// KEY=VALUE documents using github.com/subosito/gotenv's strict mode: unlike
// the envvar provider's lenient ambient-environment merge, a parser that is
// asked to turn a file into a Snapshot treats a malformed line as a parse
// failure rather than silently dropping it.
package envfileparser

import (
	"bytes"

	"github.com/subosito/gotenv"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/internal/textvalue"
)

// Parser decodes .env documents into a flat, screaming-snake-decoded
// confstack.Snapshot.
type Parser struct {
	name      string
	separator string
}

var _ confstack.Parser = (*Parser)(nil)

// New builds an env-file parser. name identifies snapshots it produces;
// separator delimits array elements within a single value (spec.md §4.2).
func New(name, separator string) *Parser {
	return &Parser{name: name, separator: separator}
}

func (p *Parser) Parse(data []byte, opts confstack.ParserOptions) (confstack.Snapshot, error) {
	pairs, err := gotenv.StrictParse(bytes.NewReader(data))
	if err != nil {
		return nil, &confstack.IoError{Path: p.name, Cause: err}
	}

	raw := make(map[string]string, len(pairs))
	for k, v := range pairs {
		dotted := confstack.DecodeScreamingSnake(k).Dotted()
		raw[dotted] = v
	}

	return &snapshot{name: p.name, separator: p.separator, raw: raw, opts: opts}, nil
}

// snapshot stores each entry as its original textual value, deferring type
// conversion to lookup time (like provider/dirfiles), since a flat KEY=VALUE
// file carries no schema to fix a native ConfigType at parse time.
type snapshot struct {
	name      string
	separator string
	raw       map[string]string
	opts      confstack.ParserOptions
}

var _ confstack.Snapshot = (*snapshot)(nil)

func (s *snapshot) Name() string { return s.name }

func (s *snapshot) Value(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeDot(key)
	raw, ok := s.raw[encoded]
	if !ok {
		return confstack.Miss(encoded), nil
	}
	content, err := textvalue.Parse(raw, typ, s.separator)
	if err != nil {
		return confstack.LookupResult{}, err
	}
	secret := s.opts.SecretsSpecifier.IsSecret(encoded, raw)
	value := confstack.NewConfigValue(content).WithSecret(secret)
	return confstack.Hit(encoded, value), nil
}
