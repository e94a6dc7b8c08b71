package confstack

// LookupResult is the outcome of a single provider's lookup: the
// provider-native encoded form of the key that was actually queried, and the
// value if present (spec.md §3).
type LookupResult struct {
	EncodedKey string
	Value      *ConfigValue
}

// Hit builds a LookupResult for a present value.
func Hit(encodedKey string, value ConfigValue) LookupResult {
	v := value
	return LookupResult{EncodedKey: encodedKey, Value: &v}
}

// Miss builds a LookupResult for an absent value.
func Miss(encodedKey string) LookupResult {
	return LookupResult{EncodedKey: encodedKey}
}

// Found reports whether the lookup produced a value.
func (r LookupResult) Found() bool { return r.Value != nil }

// WithSecret returns a copy of r with its value (if any) marked secret per
// ConfigValue.WithSecret.
func (r LookupResult) WithSecret(mark bool) LookupResult {
	if r.Value == nil || !mark {
		return r
	}
	v := r.Value.WithSecret(true)
	return LookupResult{EncodedKey: r.EncodedKey, Value: &v}
}
