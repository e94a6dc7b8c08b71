package confstack

import "time"

// AccessKind distinguishes the three access modes a reader operation may
// use (spec.md §4.1).
type AccessKind int

const (
	AccessGet AccessKind = iota
	AccessFetch
	AccessWatch
)

func (k AccessKind) String() string {
	switch k {
	case AccessGet:
		return "get"
	case AccessFetch:
		return "fetch"
	case AccessWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// SourceLocation identifies the call site of a configuration read, for
// observability.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// ProviderResult records a single child provider's contribution to a
// resolution: its name and the Result of querying it.
type ProviderResult struct {
	ProviderName string
	Result       LookupResult
	Err          error
}

// AccessMetadata is the fixed, non-outcome-dependent part of an AccessEvent.
type AccessMetadata struct {
	Kind           AccessKind
	Key            AbsoluteConfigKey
	ValueType      ConfigType
	SourceLocation SourceLocation
	Timestamp      time.Time
}

// AccessEvent is a structured record describing one logical configuration
// read, emitted by the reader façade to any registered AccessReporter
// (spec.md §3, §4.6).
type AccessEvent struct {
	Metadata         AccessMetadata
	ProviderResults  []ProviderResult
	ConversionError  error
	Result           *ConfigValue
	ResultErr        error
}

// AccessReporter receives AccessEvents. Implementations must not reorder
// events relative to the order report is called (spec.md §5).
type AccessReporter interface {
	Report(event AccessEvent)
}

// AccessReporterFunc adapts a plain function to AccessReporter.
type AccessReporterFunc func(event AccessEvent)

func (f AccessReporterFunc) Report(event AccessEvent) { f(event) }
