package zapadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mapoio/confstack"
)

func TestLogger_ForwardsFieldsAtEachLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core))

	var _ confstack.Logger = l

	l.Info("reloaded", "path", "a.yaml", "generation", 3)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "reloaded", entry.Message)
	assert.Equal(t, "a.yaml", entry.ContextMap()["path"])
	assert.EqualValues(t, 3, entry.ContextMap()["generation"])
}

func TestLogger_With_ReturnsLoggerCarryingFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core))

	scoped := l.With("provider", "reloading")
	scoped.Warn("tick")

	entry := logs.All()[0]
	assert.Equal(t, "reloading", entry.ContextMap()["provider"])
}
