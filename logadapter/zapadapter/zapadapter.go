// Package zapadapter implements confstack.Logger over go.uber.org/zap, the
// structured-logging library the teacher codebase standardizes on.
package zapadapter

import (
	"go.uber.org/zap"

	"github.com/mapoio/confstack"
)

// Logger adapts a *zap.SugaredLogger to confstack.Logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ confstack.Logger = Logger{}

// New wraps l. Fields passed to Debug/Info/Warn/Error are forwarded as
// zap's "loosely typed key-value pairs" (Sugar's With-style variadic args).
func New(l *zap.Logger) Logger {
	return Logger{sugar: l.Sugar()}
}

func (l Logger) Debug(msg string, fields ...any) { l.sugar.Debugw(msg, fields...) }
func (l Logger) Info(msg string, fields ...any)  { l.sugar.Infow(msg, fields...) }
func (l Logger) Warn(msg string, fields ...any)  { l.sugar.Warnw(msg, fields...) }
func (l Logger) Error(msg string, fields ...any) { l.sugar.Errorw(msg, fields...) }

func (l Logger) With(fields ...any) confstack.Logger {
	return Logger{sugar: l.sugar.With(fields...)}
}
