// Package flatten implements the shared mapping-flattening rules of
// spec.md §6's Parser collaborator contract: nested mappings collapse into
// a dot-separated key space, homogeneous arrays become typed array content,
// and heterogeneous arrays / non-string keys / unsupported primitives are
// rejected. JSON and YAML parsers each decode into this package's neutral
// Node representation and call Flatten.
package flatten

import (
	"fmt"

	"github.com/mapoio/confstack"
)

// Kind tags a Node's native shape.
type Kind int

const (
	KindMap Kind = iota
	KindArray
	KindString
	KindInt
	KindDouble
	KindBool
	KindNull
)

// Node is a neutral intermediate representation that a format-specific
// decoder (gjson, yaml.v3, encoding/xml) produces before handing off to
// Flatten, so the flattening/array-typing/error rules are written once.
type Node struct {
	Kind   Kind
	Map    map[string]Node
	Array  []Node
	Str    string
	Int    int64
	Double float64
	Bool   bool
}

// Flatten walks root (which must be a KindMap) into a dot-separated
// key -> ConfigValue map, per spec.md §6.
func Flatten(path string, root Node, opts confstack.ParserOptions) (map[string]confstack.ConfigValue, error) {
	if root.Kind != KindMap {
		return nil, &confstack.ErrTopLevelNotMapping{Path: path}
	}
	out := make(map[string]confstack.ConfigValue)
	if err := flattenMap(path, "", root.Map, opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenMap(path, prefix string, m map[string]Node, opts confstack.ParserOptions, out map[string]confstack.ConfigValue) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if err := flattenValue(path, key, v, opts, out); err != nil {
			return err
		}
	}
	return nil
}

func flattenValue(path, key string, v Node, opts confstack.ParserOptions, out map[string]confstack.ConfigValue) error {
	switch v.Kind {
	case KindNull:
		return nil
	case KindMap:
		return flattenMap(path, key, v.Map, opts, out)
	case KindArray:
		content, err := flattenArray(path, v.Array)
		if err != nil {
			return err
		}
		out[key] = wrap(key, content, opts)
		return nil
	case KindString:
		out[key] = wrap(key, confstack.NewStringContent(v.Str), opts)
		return nil
	case KindInt:
		out[key] = wrap(key, confstack.NewIntContent(v.Int), opts)
		return nil
	case KindDouble:
		out[key] = wrap(key, confstack.NewDoubleContent(v.Double), opts)
		return nil
	case KindBool:
		out[key] = wrap(key, confstack.NewBoolContent(v.Bool), opts)
		return nil
	default:
		return &confstack.ErrUnsupportedPrimitive{Path: path, Kind: fmt.Sprintf("kind(%d)", v.Kind)}
	}
}

func flattenArray(path string, arr []Node) (confstack.ConfigContent, error) {
	if len(arr) == 0 {
		return confstack.NewStringArrayContent(nil), nil
	}
	kind := arr[0].Kind
	for _, el := range arr[1:] {
		if el.Kind != kind {
			return confstack.ConfigContent{}, &confstack.ErrHeterogeneousArray{Path: path}
		}
	}
	switch kind {
	case KindString:
		vals := make([]string, len(arr))
		for i, el := range arr {
			vals[i] = el.Str
		}
		return confstack.NewStringArrayContent(vals), nil
	case KindInt:
		vals := make([]int64, len(arr))
		for i, el := range arr {
			vals[i] = el.Int
		}
		return confstack.NewIntArrayContent(vals), nil
	case KindDouble:
		vals := make([]float64, len(arr))
		for i, el := range arr {
			vals[i] = el.Double
		}
		return confstack.NewDoubleArrayContent(vals), nil
	case KindBool:
		vals := make([]bool, len(arr))
		for i, el := range arr {
			vals[i] = el.Bool
		}
		return confstack.NewBoolArrayContent(vals), nil
	default:
		return confstack.ConfigContent{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: "array-of-non-scalar"}
	}
}

func wrap(key string, content confstack.ConfigContent, opts confstack.ParserOptions) confstack.ConfigValue {
	secret := opts.SecretsSpecifier.IsSecret(key, nil)
	return confstack.NewConfigValue(content).WithSecret(secret)
}

// MapSnapshot is a static Snapshot over a flattened key -> ConfigValue map,
// shared by every parser adapter.
type MapSnapshot struct {
	SnapName string
	Entries  map[string]confstack.ConfigValue
}

var _ confstack.Snapshot = (*MapSnapshot)(nil)

func (s *MapSnapshot) Name() string { return s.SnapName }

func (s *MapSnapshot) Value(key confstack.AbsoluteConfigKey, _ confstack.ConfigType) (confstack.LookupResult, error) {
	encoded := confstack.EncodeDot(key)
	if v, ok := s.Entries[encoded]; ok {
		return confstack.Hit(encoded, v), nil
	}
	return confstack.Miss(encoded), nil
}
