package confstack

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ContextValue is the set of types a Context entry may hold: string, int,
// float64, or bool (spec.md §3).
type ContextValue interface {
	isContextValue()
}

type (
	ContextString string
	ContextInt    int64
	ContextFloat  float64
	ContextBool   bool
)

func (ContextString) isContextValue() {}
func (ContextInt) isContextValue()    {}
func (ContextFloat) isContextValue()  {}
func (ContextBool) isContextValue()   {}

// Context is an auxiliary key→value map travelling alongside a ConfigKey,
// used by providers that support dimensional overrides (e.g. per-environment
// values). Keys are unique; values are one of ContextString/ContextInt/
// ContextFloat/ContextBool.
type Context map[string]ContextValue

// Clone returns a shallow copy of c. A nil Context clones to nil.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// merge returns a new Context containing c's entries overridden by other's
// entries (other wins on key collision).
func (c Context) merge(other Context) Context {
	if len(c) == 0 && len(other) == 0 {
		return nil
	}
	out := make(Context, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// signature renders the context as a deterministic string, keys sorted and
// serialized as "k=v;k2=v2", used for equality, hashing, and ordering.
func (c Context) signature() string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(contextValueString(c[k]))
	}
	return b.String()
}

func contextValueString(v ContextValue) string {
	switch t := v.(type) {
	case ContextString:
		return string(t)
	case ContextInt:
		return strconv.FormatInt(int64(t), 10)
	case ContextFloat:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case ContextBool:
		return strconv.FormatBool(bool(t))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// keyData is the shared representation behind both ConfigKey and
// AbsoluteConfigKey: an ordered sequence of non-empty string components plus
// a context map.
type keyData struct {
	components []string
	context    Context
}

func (k keyData) signature() string {
	return strings.Join(k.components, ".") + "\x00" + k.context.signature()
}

func (k keyData) equal(other keyData) bool {
	return k.signature() == other.signature()
}

// less implements the total order from spec.md P7: lexicographic over
// components, then by context signature, then by component count.
func (k keyData) less(other keyData) bool {
	n := len(k.components)
	if len(other.components) < n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		if k.components[i] != other.components[i] {
			return k.components[i] < other.components[i]
		}
	}
	if len(k.components) != len(other.components) {
		return len(k.components) < len(other.components)
	}
	ks, os := k.context.signature(), other.context.signature()
	if ks != os {
		return ks < os
	}
	return false
}

func appendData(left, right keyData) keyData {
	components := make([]string, 0, len(left.components)+len(right.components))
	components = append(components, left.components...)
	components = append(components, right.components...)
	return keyData{components: components, context: left.context.merge(right.context)}
}

// prependData computes right prepended with left: left's components come
// first, but left's context wins on collision (the reverse of append).
func prependData(left, right keyData) keyData {
	components := make([]string, 0, len(left.components)+len(right.components))
	components = append(components, left.components...)
	components = append(components, right.components...)
	return keyData{components: components, context: right.context.merge(left.context)}
}

// ConfigKey is a relative, hierarchical configuration key: an ordered
// sequence of non-empty string components plus a context map. It is
// supplied by callers and later combined with a reader's absolute prefix.
type ConfigKey struct {
	data keyData
}

// NewConfigKey builds a relative key from path components. Empty components
// are rejected by trimming: a blank component is simply dropped, since the
// grammar requires non-empty components but callers routinely build keys by
// splitting on ".".
func NewConfigKey(components ...string) ConfigKey {
	cleaned := make([]string, 0, len(components))
	for _, c := range components {
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return ConfigKey{data: keyData{components: cleaned}}
}

// ParseConfigKey splits a dot-separated string into a relative key.
func ParseConfigKey(dotted string) ConfigKey {
	if dotted == "" {
		return ConfigKey{}
	}
	return NewConfigKey(strings.Split(dotted, ".")...)
}

// WithContext returns a copy of k carrying the given context, replacing any
// previous one.
func (k ConfigKey) WithContext(ctx Context) ConfigKey {
	k.data.context = ctx.Clone()
	return k
}

// Components returns the ordered path components.
func (k ConfigKey) Components() []string {
	out := make([]string, len(k.data.components))
	copy(out, k.data.components)
	return out
}

// Context returns the key's context map.
func (k ConfigKey) Context() Context { return k.data.context.Clone() }

// IsEmpty reports whether the key has no components.
func (k ConfigKey) IsEmpty() bool { return len(k.data.components) == 0 }

// Append merges other onto the end of k's components; on context key
// collision, other's value wins.
func (k ConfigKey) Append(other ConfigKey) ConfigKey {
	return ConfigKey{data: appendData(k.data, other.data)}
}

// Prepend merges other onto the front of k's components; on context key
// collision, other's value wins (the mirror of Append).
func (k ConfigKey) Prepend(other ConfigKey) ConfigKey {
	return ConfigKey{data: prependData(other.data, k.data)}
}

// Equal reports whether k and other have identical components and an
// identical context signature (V2/P7 basis).
func (k ConfigKey) Equal(other ConfigKey) bool { return k.data.equal(other.data) }

// Less implements the total order of spec.md P7.
func (k ConfigKey) Less(other ConfigKey) bool { return k.data.less(other.data) }

// Dotted renders the canonical dot-separated form of the key's components
// (context is not part of this encoding; see encode.go for provider
// encoders).
func (k ConfigKey) Dotted() string { return strings.Join(k.data.components, ".") }

func (k ConfigKey) String() string { return k.Dotted() }

// Signature returns a stable string uniquely identifying k's components and
// context, suitable as a map key.
func (k ConfigKey) Signature() string { return k.data.signature() }

// AbsoluteConfigKey is a fully-qualified key, ready for direct provider
// lookup: the reader's key prefix has already been applied.
type AbsoluteConfigKey struct {
	data keyData
}

// RootKey is the empty absolute key — no scoping prefix.
var RootKey = AbsoluteConfigKey{}

// NewAbsoluteConfigKey builds an absolute key directly from components.
func NewAbsoluteConfigKey(components ...string) AbsoluteConfigKey {
	return AbsoluteConfigKey{data: NewConfigKey(components...).data}
}

func (k AbsoluteConfigKey) Components() []string {
	out := make([]string, len(k.data.components))
	copy(out, k.data.components)
	return out
}

func (k AbsoluteConfigKey) Context() Context { return k.data.context.Clone() }

func (k AbsoluteConfigKey) IsEmpty() bool { return len(k.data.components) == 0 }

// Append appends a relative key onto an absolute key. If the receiver is the
// empty/"none" absolute prefix, the relative key is promoted to absolute
// as-is (spec.md §3).
func (k AbsoluteConfigKey) Append(rel ConfigKey) AbsoluteConfigKey {
	return AbsoluteConfigKey{data: appendData(k.data, rel.data)}
}

func (k AbsoluteConfigKey) Equal(other AbsoluteConfigKey) bool { return k.data.equal(other.data) }

func (k AbsoluteConfigKey) Less(other AbsoluteConfigKey) bool { return k.data.less(other.data) }

func (k AbsoluteConfigKey) Dotted() string { return strings.Join(k.data.components, ".") }

func (k AbsoluteConfigKey) String() string { return k.Dotted() }

// Signature returns a stable string uniquely identifying k's components and
// context, suitable as a map key.
func (k AbsoluteConfigKey) Signature() string { return k.data.signature() }

// Relative strips the absolute marker, returning the equivalent relative
// key. Useful when an absolute key must be fed back through another
// provider's relative-key API (e.g. operator providers).
func (k AbsoluteConfigKey) Relative() ConfigKey { return ConfigKey{data: k.data} }
