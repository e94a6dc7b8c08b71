package confstackfx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/confstackfx"
	"github.com/mapoio/confstack/provider/memory"
	"github.com/mapoio/confstack/reader"
)

func TestModule_AssemblesRegisteredProvidersIntoReader(t *testing.T) {
	var r *reader.Reader

	app := fx.New(
		confstackfx.Module,
		confstackfx.AsProvider(func() confstack.Provider {
			return memory.New("defaults", memory.Entry{
				Key:   confstack.NewAbsoluteConfigKey("server", "host"),
				Value: confstack.NewConfigValue(confstack.NewStringContent("localhost")),
			})
		}),

		fx.Populate(&r),
		fx.NopLogger,
	)
	require.NoError(t, app.Err())

	v, ok := reader.Get[string](r, confstack.NewConfigKey("server", "host"))
	assert.True(t, ok)
	assert.Equal(t, "localhost", v)
}

func TestModule_PrecedenceFollowsRegistrationOrder(t *testing.T) {
	var r *reader.Reader

	app := fx.New(
		confstackfx.Module,
		confstackfx.AsProvider(func() confstack.Provider {
			return memory.New("high", memory.Entry{
				Key:   confstack.NewAbsoluteConfigKey("feature", "enabled"),
				Value: confstack.NewConfigValue(confstack.NewBoolContent(true)),
			})
		}),
		confstackfx.AsProvider(func() confstack.Provider {
			return memory.New("low", memory.Entry{
				Key:   confstack.NewAbsoluteConfigKey("feature", "enabled"),
				Value: confstack.NewConfigValue(confstack.NewBoolContent(false)),
			})
		}),

		fx.Populate(&r),
		fx.NopLogger,
	)
	require.NoError(t, app.Err())

	v, ok := reader.Get[bool](r, confstack.NewConfigKey("feature", "enabled"))
	assert.True(t, ok)
	assert.True(t, v)
}

func TestModule_NoProvidersRegistered_FailsToBuild(t *testing.T) {
	app := fx.New(
		confstackfx.Module,
		fx.Invoke(func(confstack.Provider) {}),
		fx.NopLogger,
	)
	assert.Error(t, app.Err())
}
