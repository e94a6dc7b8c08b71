package cliargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestProvider_FlagEqualsValue(t *testing.T) {
	p := New("cli", []string{"prog", "--database-port=5432"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("database", "port"), confstack.TypeInt)
	require.NoError(t, err)
	require.True(t, r.Found())
	n, err := r.Value.Content.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(5432), n)
}

func TestProvider_FlagFollowedByValues(t *testing.T) {
	p := New("cli", []string{"prog", "--hosts", "a.com", "b.com"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("hosts"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, arr)
}

func TestProvider_RepeatedFlagsConcatenate(t *testing.T) {
	p := New("cli", []string{"prog", "--tag", "a", "--tag", "b"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("tag"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, arr)
}

func TestProvider_ValueContainingSeparatorIsSplit(t *testing.T) {
	p := New("cli", []string{"prog", "--tag=a,b"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("tag"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, arr)
}

func TestProvider_TokensBeforeFirstFlagIgnored(t *testing.T) {
	p := New("cli", []string{"prog", "stray", "-", "--name=x"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("name"), confstack.TypeString)
	require.NoError(t, err)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "x", s)
}

func TestProvider_LoneDashIsLegalValue(t *testing.T) {
	p := New("cli", []string{"prog", "--input", "-"}, Options{})

	r, err := p.Value(confstack.NewAbsoluteConfigKey("input"), confstack.TypeString)
	require.NoError(t, err)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "-", s)
}

func TestProvider_MissingFlag(t *testing.T) {
	p := New("cli", []string{"prog"}, Options{})
	r, err := p.Value(confstack.NewAbsoluteConfigKey("absent"), confstack.TypeString)
	require.NoError(t, err)
	assert.False(t, r.Found())
}
