package yamlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

const doc = `
server:
  host: localhost
  port: 8080
  ratio: 3.5
tags:
  - a
  - b
flags:
  - true
  - false
`

func TestParser_FlattensNestedMappings(t *testing.T) {
	p := New("config.yaml")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("server", "host"), confstack.TypeString)
	require.NoError(t, err)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "localhost", s)
}

func TestParser_PreservesIntVsFloatNatively(t *testing.T) {
	p := New("config.yaml")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, _ := snap.Value(confstack.NewAbsoluteConfigKey("server", "port"), confstack.TypeInt)
	assert.Equal(t, confstack.TypeInt, r.Value.Content.Type())

	r, _ = snap.Value(confstack.NewAbsoluteConfigKey("server", "ratio"), confstack.TypeDouble)
	assert.Equal(t, confstack.TypeDouble, r.Value.Content.Type())
}

func TestParser_HomogeneousArrayBecomesTypedArray(t *testing.T) {
	p := New("config.yaml")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("tags"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, arr)

	r, err = snap.Value(confstack.NewAbsoluteConfigKey("flags"), confstack.TypeBoolArray)
	require.NoError(t, err)
	barr, err := r.Value.Content.BoolArray()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, barr)
}

func TestParser_EmptyDocumentParsesAsEmptyMapping(t *testing.T) {
	p := New("config.yaml")
	snap, err := p.Parse([]byte(""), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, _ := snap.Value(confstack.NewAbsoluteConfigKey("anything"), confstack.TypeString)
	assert.False(t, r.Found())
}

func TestParser_TopLevelScalarErrors(t *testing.T) {
	p := New("config.yaml")
	_, err := p.Parse([]byte("just-a-string"), confstack.DefaultParserOptions())
	require.Error(t, err)
	var target *confstack.ErrTopLevelNotMapping
	assert.ErrorAs(t, err, &target)
}
