package confstack

// SecretsSpecifier decides, for a given provider-native key/value pair,
// whether that entry should be tagged secret (spec.md §3). K and V are
// generic so both string-keyed providers with []byte values
// (directory-files) and richer providers can reuse the same specifier shape.
type SecretsSpecifier[K, V any] struct {
	kind     secretsKind
	specific map[any]struct{}
	dynamic  func(K, V) bool
}

type secretsKind int

const (
	secretsNone secretsKind = iota
	secretsAll
	secretsSpecific
	secretsDynamic
)

// SecretsAll marks every entry secret.
func SecretsAll[K, V any]() SecretsSpecifier[K, V] {
	return SecretsSpecifier[K, V]{kind: secretsAll}
}

// SecretsNone marks no entry secret.
func SecretsNone[K, V any]() SecretsSpecifier[K, V] {
	return SecretsSpecifier[K, V]{kind: secretsNone}
}

// SecretsSpecific marks only the given keys secret.
func SecretsSpecific[K comparable, V any](keys ...K) SecretsSpecifier[K, V] {
	set := make(map[any]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return SecretsSpecifier[K, V]{kind: secretsSpecific, specific: set}
}

// SecretsDynamic marks entries secret according to a predicate evaluated
// against the provider-native key/value pair.
func SecretsDynamic[K, V any](fn func(K, V) bool) SecretsSpecifier[K, V] {
	return SecretsSpecifier[K, V]{kind: secretsDynamic, dynamic: fn}
}

// IsSecret evaluates the specifier for a given key/value pair.
func (s SecretsSpecifier[K, V]) IsSecret(key K, value V) bool {
	switch s.kind {
	case secretsAll:
		return true
	case secretsSpecific:
		_, ok := s.specific[any(key)]
		return ok
	case secretsDynamic:
		if s.dynamic == nil {
			return false
		}
		return s.dynamic(key, value)
	default:
		return false
	}
}
