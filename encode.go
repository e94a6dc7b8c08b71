package confstack

import (
	"strings"
	"unicode"
)

// KeyEncoder renders an AbsoluteConfigKey into a provider-native string
// (spec.md §4.1). Equal keys must produce identical encodings for a given
// provider (V2).
type KeyEncoder func(key AbsoluteConfigKey) string

// KeyDecoder is the inverse direction: it recovers a ConfigKey from a
// provider-native string. Decoders are only required to be inverses of
// their paired encoder on the encoder's image (R1): encode(decode(s)) == s
// for any s the encoder could itself have produced. They need not recover
// the exact original component boundaries, since encoders are not
// injective (e.g. both a literal "-" and a component boundary render as
// "-" in the kebab encoder).
type KeyDecoder func(s string) ConfigKey

// splitCamel inserts a "-" before an uppercase letter that is immediately
// preceded by a lowercase letter, per the camelCase -> kebab-case rule
// shared by the CLI-flag and environment-variable encoders.
func splitCamel(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EncodeDot renders the canonical dot-separated form, used by JSON/YAML/
// plist/in-memory providers.
func EncodeDot(key AbsoluteConfigKey) string {
	return strings.Join(key.Components(), ".")
}

// DecodeDot parses a dot-separated string into a relative key.
func DecodeDot(s string) ConfigKey {
	return ParseConfigKey(s)
}

// EncodeCLIFlag renders "--a-b-c" CLI-flag style: camelCase components are
// kebab-split, then the whole string is lowercased; non-alphanumerics other
// than "-" pass through.
func EncodeCLIFlag(key AbsoluteConfigKey) string {
	parts := make([]string, 0, len(key.Components()))
	for _, c := range key.Components() {
		parts = append(parts, strings.ToLower(splitCamel(c)))
	}
	return "--" + strings.Join(parts, "-")
}

// DecodeCLIFlag strips a leading "--" and splits on "-" into components.
func DecodeCLIFlag(s string) ConfigKey {
	s = strings.TrimPrefix(s, "--")
	if s == "" {
		return ConfigKey{}
	}
	return NewConfigKey(strings.Split(s, "-")...)
}

// EncodeScreamingSnake renders "A_B_C" screaming-snake-case, used by
// environment variables; camelCase components are split the same way as
// EncodeCLIFlag.
func EncodeScreamingSnake(key AbsoluteConfigKey) string {
	parts := make([]string, 0, len(key.Components()))
	for _, c := range key.Components() {
		parts = append(parts, strings.ToUpper(splitCamel(c)))
	}
	return strings.Join(parts, "_")
}

// DecodeScreamingSnake splits a screaming-snake string on "_" and
// lowercases each component.
func DecodeScreamingSnake(s string) ConfigKey {
	if s == "" {
		return ConfigKey{}
	}
	segments := strings.Split(s, "_")
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = strings.ToLower(seg)
	}
	return NewConfigKey(parts...)
}

// EncodeDirFile renders the single-file-per-key directory encoding: each
// component has alphanumerics and "-" pass through, everything else becomes
// "_", and components are joined with "-" (no hierarchy).
func EncodeDirFile(key AbsoluteConfigKey) string {
	parts := make([]string, 0, len(key.Components()))
	for _, c := range key.Components() {
		parts = append(parts, sanitizeDirFileComponent(c))
	}
	return strings.Join(parts, "-")
}

func sanitizeDirFileComponent(c string) string {
	var b strings.Builder
	for _, r := range c {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DecodeDirFile splits a directory filename on "-" into components.
func DecodeDirFile(s string) ConfigKey {
	if s == "" {
		return ConfigKey{}
	}
	return NewConfigKey(strings.Split(s, "-")...)
}
