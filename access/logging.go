package access

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mapoio/confstack"
)

// LoggingReporter emits a structured zap record per AccessEvent, at a
// configured level, with a per-instance monotonic access counter.
type LoggingReporter struct {
	logger  *zap.Logger
	level   zapcore.Level
	counter atomic.Int64
}

var _ confstack.AccessReporter = (*LoggingReporter)(nil)

// NewLogging builds a LoggingReporter over logger, emitting at level.
func NewLogging(logger *zap.Logger, level zapcore.Level) *LoggingReporter {
	return &LoggingReporter{logger: logger, level: level}
}

func (l *LoggingReporter) Report(event confstack.AccessEvent) {
	n := l.counter.Add(1)

	fields := []zap.Field{
		zap.String("kind", event.Metadata.Kind.String()),
		zap.String("key", event.Metadata.Key.Dotted()),
		zap.String("location", formatLocation(event.Metadata.SourceLocation)),
		zap.Int64("counter", n),
		zap.String("value", displayResult(event.Result)),
	}
	if event.ConversionError != nil {
		fields = append(fields, zap.Error(event.ConversionError))
	}
	if event.ResultErr != nil {
		fields = append(fields, zap.NamedError("result_error", event.ResultErr))
	}

	providers := make([]zapcore.Field, 0, len(event.ProviderResults))
	for _, pr := range event.ProviderResults {
		if pr.Err != nil {
			providers = append(providers, zap.String(pr.ProviderName, "error: "+pr.Err.Error()))
			continue
		}
		providers = append(providers, zap.String(pr.ProviderName, displayLookup(pr.Result)))
	}
	fields = append(fields, zap.Object("providers", providerFields(providers)))

	l.logger.Check(l.level, "confstack access").Write(fields...)
}

// providerFields adapts a pre-built field slice to zapcore.ObjectMarshaler
// so the per-provider breakdown nests under a single "providers" key.
type providerFields []zapcore.Field

func (p providerFields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range p {
		f.AddTo(enc)
	}
	return nil
}

func formatLocation(loc confstack.SourceLocation) string {
	if loc.File == "" {
		return ""
	}
	return loc.Function
}

func displayResult(v *confstack.ConfigValue) string {
	if v == nil {
		return "<none>"
	}
	return v.Display()
}

func displayLookup(r confstack.LookupResult) string {
	if !r.Found() {
		return "<miss>"
	}
	return r.Value.Display()
}
