// Package yamlparser implements confstack.Parser for YAML documents using
// gopkg.in/yaml.v3, which preserves scalar int/float distinctions natively
// (unlike encoding/json's map[string]any decode).
package yamlparser

import (
	"gopkg.in/yaml.v3"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/parser/internal/flatten"
)

// Parser decodes YAML documents into a flattened confstack.Snapshot.
type Parser struct{ name string }

var _ confstack.Parser = (*Parser)(nil)

// New builds a YAML parser. name identifies snapshots it produces.
func New(name string) *Parser { return &Parser{name: name} }

func (p *Parser) Parse(data []byte, opts confstack.ParserOptions) (confstack.Snapshot, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &confstack.IoError{Path: p.name, Cause: err}
	}
	if root == nil {
		root = map[string]any{}
	}
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

func toNode(path string, v any) (flatten.Node, error) {
	switch t := v.(type) {
	case nil:
		return flatten.Node{Kind: flatten.KindNull}, nil
	case map[string]any:
		m := make(map[string]flatten.Node, len(t))
		for k, val := range t {
			child, err := toNode(path, val)
			if err != nil {
				return flatten.Node{}, err
			}
			m[k] = child
		}
		return flatten.Node{Kind: flatten.KindMap, Map: m}, nil
	case map[any]any:
		m := make(map[string]flatten.Node, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return flatten.Node{}, &confstack.ErrKeyNotString{Path: path}
			}
			child, err := toNode(path, val)
			if err != nil {
				return flatten.Node{}, err
			}
			m[ks] = child
		}
		return flatten.Node{Kind: flatten.KindMap, Map: m}, nil
	case []any:
		items := make([]flatten.Node, 0, len(t))
		for _, el := range t {
			child, err := toNode(path, el)
			if err != nil {
				return flatten.Node{}, err
			}
			items = append(items, child)
		}
		return flatten.Node{Kind: flatten.KindArray, Array: items}, nil
	case string:
		return flatten.Node{Kind: flatten.KindString, Str: t}, nil
	case int:
		return flatten.Node{Kind: flatten.KindInt, Int: int64(t)}, nil
	case int64:
		return flatten.Node{Kind: flatten.KindInt, Int: t}, nil
	case uint64:
		return flatten.Node{Kind: flatten.KindInt, Int: int64(t)}, nil
	case float64:
		return flatten.Node{Kind: flatten.KindDouble, Double: t}, nil
	case bool:
		return flatten.Node{Kind: flatten.KindBool, Bool: t}, nil
	default:
		return flatten.Node{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: typeName(t)}
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case map[string]any, map[any]any:
		return "map"
	default:
		return "unknown"
	}
}
