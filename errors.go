package confstack

import "fmt"

// MissingRequiredConfigValue is returned by a required* reader accessor when
// no provider produced a value for key (spec.md §7).
type MissingRequiredConfigValue struct {
	Key AbsoluteConfigKey
}

func (e *MissingRequiredConfigValue) Error() string {
	return fmt.Sprintf("confstack: missing required config value %q", e.Key.Dotted())
}

// ConfigValueNotConvertible means a provider held a value but its content
// tag did not match the type the reader requested.
type ConfigValueNotConvertible struct {
	ProviderName string
	Requested    ConfigType
}

func (e *ConfigValueNotConvertible) Error() string {
	return fmt.Sprintf("confstack: value from %q is not convertible to %s", e.ProviderName, e.Requested)
}

// ConfigValueFailedToCast means a caller-supplied string/int constructor
// (the "as: T" conversion helpers) returned false/an error.
type ConfigValueFailedToCast struct {
	ProviderName string
	TypeName     string
}

func (e *ConfigValueFailedToCast) Error() string {
	return fmt.Sprintf("confstack: failed to cast value from %q to %s", e.ProviderName, e.TypeName)
}

// FileNotFound is returned by filesystem collaborators when a path does not
// exist.
type FileNotFound struct {
	Path string
}

func (e *FileNotFound) Error() string { return fmt.Sprintf("confstack: file not found: %s", e.Path) }

// IoError wraps an underlying I/O failure with the path it occurred on.
type IoError struct {
	Path  string
	Cause error
}

func (e *IoError) Error() string { return fmt.Sprintf("confstack: io error on %s: %v", e.Path, e.Cause) }
func (e *IoError) Unwrap() error { return e.Cause }

// MissingLastModifiedTimestamp is returned when a filesystem collaborator
// cannot determine a file's modification time.
type MissingLastModifiedTimestamp struct {
	Path string
}

func (e *MissingLastModifiedTimestamp) Error() string {
	return fmt.Sprintf("confstack: missing last-modified timestamp for %s", e.Path)
}

// NotADirectory is returned by the directory-files provider when its root
// path is not a directory.
type NotADirectory struct {
	Path string
}

func (e *NotADirectory) Error() string { return fmt.Sprintf("confstack: not a directory: %s", e.Path) }

// Parser errors (spec.md §6): the Parser collaborator reports one of these
// kinds when it cannot flatten raw bytes into a snapshot.
type (
	// ErrTopLevelNotMapping means the parsed document's root was not a
	// key/value mapping.
	ErrTopLevelNotMapping struct{ Path string }
	// ErrUnsupportedPrimitive means a scalar value's native type has no
	// ConfigType equivalent.
	ErrUnsupportedPrimitive struct {
		Path string
		Kind string
	}
	// ErrHeterogeneousArray means an array mixed incompatible element
	// types and cannot be represented as a typed array ConfigContent.
	ErrHeterogeneousArray struct{ Path string }
	// ErrKeyNotString means a mapping key was not a string (e.g. a YAML
	// integer or boolean key).
	ErrKeyNotString struct{ Path string }
)

func (e *ErrTopLevelNotMapping) Error() string {
	return fmt.Sprintf("confstack: parser: top-level value at %q is not a mapping", e.Path)
}

func (e *ErrUnsupportedPrimitive) Error() string {
	return fmt.Sprintf("confstack: parser: unsupported primitive kind %q at %q", e.Kind, e.Path)
}

func (e *ErrHeterogeneousArray) Error() string {
	return fmt.Sprintf("confstack: parser: heterogeneous array at %q", e.Path)
}

func (e *ErrKeyNotString) Error() string {
	return fmt.Sprintf("confstack: parser: non-string key at %q", e.Path)
}
