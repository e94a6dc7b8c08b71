// Package plistparser implements confstack.Parser for the XML property-list
// format. No library in the example corpus offers a plist codec, so this
// package decodes the format's small XML vocabulary (dict/array/string/
// integer/real/true/false) directly with the standard library's
// encoding/xml — the one component of this project without a third-party
// grounding.
package plistparser

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/parser/internal/flatten"
)

// Parser decodes XML property lists into a flattened confstack.Snapshot.
type Parser struct{ name string }

var _ confstack.Parser = (*Parser)(nil)

// New builds a plist parser. name identifies snapshots it produces.
func New(name string) *Parser { return &Parser{name: name} }

// plistDoc mirrors the <plist><dict>...</dict></plist> envelope.
type plistDoc struct {
	XMLName xml.Name  `xml:"plist"`
	Root    plistNode `xml:",any"`
}

// plistNode captures one XML element of the property-list vocabulary. Only
// one of its fields is meaningful, selected by XMLName.Local.
type plistNode struct {
	XMLName xml.Name
	Dict    []plistNode `xml:",any"`
	Chardata string     `xml:",chardata"`
}

func (p *Parser) Parse(data []byte, opts confstack.ParserOptions) (confstack.Snapshot, error) {
	var doc plistDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &confstack.IoError{Path: p.name, Cause: err}
	}
	if doc.Root.XMLName.Local != "dict" {
		return nil, &confstack.ErrTopLevelNotMapping{Path: p.name}
	}
	node, err := dictToNode(p.name, doc.Root.Dict)
	if err != nil {
		return nil, err
	}
	entries, err := flatten.Flatten(p.name, node, opts)
	if err != nil {
		return nil, err
	}
	return &flatten.MapSnapshot{SnapName: p.name, Entries: entries}, nil
}

// dictToNode interprets a <dict>'s flat children as alternating <key>
// elements and value elements, per the plist XML grammar.
func dictToNode(path string, children []plistNode) (flatten.Node, error) {
	m := make(map[string]flatten.Node)
	var pendingKey *string
	for _, child := range children {
		if child.XMLName.Local == "key" {
			k := child.Chardata
			pendingKey = &k
			continue
		}
		if pendingKey == nil {
			return flatten.Node{}, &confstack.ErrKeyNotString{Path: path}
		}
		node, err := elementToNode(path, child)
		if err != nil {
			return flatten.Node{}, err
		}
		m[*pendingKey] = node
		pendingKey = nil
	}
	return flatten.Node{Kind: flatten.KindMap, Map: m}, nil
}

func elementToNode(path string, el plistNode) (flatten.Node, error) {
	switch el.XMLName.Local {
	case "dict":
		return dictToNode(path, el.Dict)
	case "array":
		items := make([]flatten.Node, 0, len(el.Dict))
		for _, c := range el.Dict {
			item, err := elementToNode(path, c)
			if err != nil {
				return flatten.Node{}, err
			}
			items = append(items, item)
		}
		return flatten.Node{Kind: flatten.KindArray, Array: items}, nil
	case "string":
		return flatten.Node{Kind: flatten.KindString, Str: el.Chardata}, nil
	case "integer":
		n, err := strconv.ParseInt(el.Chardata, 10, 64)
		if err != nil {
			return flatten.Node{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: "integer"}
		}
		return flatten.Node{Kind: flatten.KindInt, Int: n}, nil
	case "real":
		f, err := strconv.ParseFloat(el.Chardata, 64)
		if err != nil {
			return flatten.Node{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: "real"}
		}
		return flatten.Node{Kind: flatten.KindDouble, Double: f}, nil
	case "true":
		return flatten.Node{Kind: flatten.KindBool, Bool: true}, nil
	case "false":
		return flatten.Node{Kind: flatten.KindBool, Bool: false}, nil
	default:
		return flatten.Node{}, &confstack.ErrUnsupportedPrimitive{Path: path, Kind: fmt.Sprintf("<%s>", el.XMLName.Local)}
	}
}
