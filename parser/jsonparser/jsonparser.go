// Package jsonparser implements confstack.Parser for JSON documents using
// gjson/sjson, mirroring the gjson-based config decoding style used
// elsewhere in the ecosystem for schema-less JSON traversal.
package jsonparser

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/parser/internal/flatten"
)

// Parser decodes JSON documents into a flattened confstack.Snapshot.
type Parser struct{ name string }

var _ confstack.Parser = (*Parser)(nil)

// New builds a JSON parser. name identifies snapshots it produces.
func New(name string) *Parser { return &Parser{name: name} }

func (p *Parser) Parse(data []byte, opts confstack.ParserOptions) (confstack.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, &confstack.ErrTopLevelNotMapping{Path: p.name}
	}
	root := gjson.ParseBytes(data)
	node, err := toNode(p.name, root)
	if err != nil {
		return nil, err
	}
	entries, err := flatten.Flatten(p.name, node, opts)
	if err != nil {
		return nil, err
	}
	return &flatten.MapSnapshot{SnapName: p.name, Entries: entries}, nil
}

func toNode(path string, r gjson.Result) (flatten.Node, error) {
	switch {
	case r.IsObject():
		m := make(map[string]flatten.Node)
		var walkErr error
		r.ForEach(func(key, value gjson.Result) bool {
			if key.Type != gjson.String {
				walkErr = &confstack.ErrKeyNotString{Path: path}
				return false
			}
			child, err := toNode(path, value)
			if err != nil {
				walkErr = err
				return false
			}
			m[key.String()] = child
			return true
		})
		if walkErr != nil {
			return flatten.Node{}, walkErr
		}
		return flatten.Node{Kind: flatten.KindMap, Map: m}, nil
	case r.IsArray():
		arr := r.Array()
		items := make([]flatten.Node, 0, len(arr))
		for _, el := range arr {
			child, err := toNode(path, el)
			if err != nil {
				return flatten.Node{}, err
			}
			items = append(items, child)
		}
		return flatten.Node{Kind: flatten.KindArray, Array: items}, nil
	case r.Type == gjson.String:
		return flatten.Node{Kind: flatten.KindString, Str: r.String()}, nil
	case r.Type == gjson.Number:
		if isIntegerLiteral(r.Raw) {
			return flatten.Node{Kind: flatten.KindInt, Int: r.Int()}, nil
		}
		return flatten.Node{Kind: flatten.KindDouble, Double: r.Float()}, nil
	case r.Type == gjson.True, r.Type == gjson.False:
		return flatten.Node{Kind: flatten.KindBool, Bool: r.Bool()}, nil
	case r.Type == gjson.Null:
		return flatten.Node{Kind: flatten.KindNull}, nil
	default:
		return flatten.Node{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: r.Raw}
	}
}

// isIntegerLiteral reports whether raw's literal JSON text has no fractional
// or exponent part, so "8080" becomes TypeInt but "8080.0"/"8e3" stay
// TypeDouble even though both may describe a whole number.
func isIntegerLiteral(raw string) bool {
	return !strings.ContainsAny(raw, ".eE")
}

// Marshal re-serializes a flat dot-keyed map back into a JSON document,
// used by test fixtures that need to round-trip a snapshot's contents.
func Marshal(flat map[string]string) ([]byte, error) {
	out := []byte("{}")
	for k, v := range flat {
		var err error
		out, err = sjson.SetBytes(out, k, v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
