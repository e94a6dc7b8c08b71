package confstack

import "fmt"

// ConfigValue pairs resolved content with a secret flag (spec.md §3). Once a
// ConfigValue is marked secret, every copy derived from it must remain
// secret (V4); callers should use WithSecret rather than constructing a new
// ConfigValue to flip the flag.
type ConfigValue struct {
	Content  ConfigContent
	IsSecret bool
}

// NewConfigValue wraps content as a non-secret value.
func NewConfigValue(content ConfigContent) ConfigValue {
	return ConfigValue{Content: content}
}

// WithSecret returns a copy of v with IsSecret forced true if mark is true.
// It never clears an already-true flag, preserving V4's sticky semantics.
func (v ConfigValue) WithSecret(mark bool) ConfigValue {
	if mark {
		v.IsSecret = true
	}
	return v
}

// Display renders the value for logs/diagnostics. Secret values always
// render redacted, regardless of content type.
func (v ConfigValue) Display() string {
	if v.IsSecret {
		return fmt.Sprintf("[%s: <REDACTED>]", v.Content.Type())
	}
	return v.Content.Display()
}

func (v ConfigValue) String() string { return v.Display() }
