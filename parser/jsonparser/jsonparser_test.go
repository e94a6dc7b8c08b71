package jsonparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestParser_FlattensNestedObjects(t *testing.T) {
	p := New("config.json")
	snap, err := p.Parse([]byte(`{"server":{"host":"localhost","port":8080}}`), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("server", "host"), confstack.TypeString)
	require.NoError(t, err)
	require.True(t, r.Found())
	s, err := r.Value.Content.String()
	require.NoError(t, err)
	assert.Equal(t, "localhost", s)

	r, err = snap.Value(confstack.NewAbsoluteConfigKey("server", "port"), confstack.TypeInt)
	require.NoError(t, err)
	require.True(t, r.Found())
	n, err := r.Value.Content.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(8080), n)
}

func TestParser_IntegerLiteralBecomesTypeInt_FloatLiteralStaysDouble(t *testing.T) {
	p := New("config.json")
	snap, err := p.Parse([]byte(`{"count":3,"ratio":3.5}`), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, _ := snap.Value(confstack.NewAbsoluteConfigKey("count"), confstack.TypeInt)
	assert.Equal(t, confstack.TypeInt, r.Value.Content.Type())

	r, _ = snap.Value(confstack.NewAbsoluteConfigKey("ratio"), confstack.TypeDouble)
	assert.Equal(t, confstack.TypeDouble, r.Value.Content.Type())
}

func TestParser_HomogeneousArrayBecomesTypedArray(t *testing.T) {
	p := New("config.json")
	snap, err := p.Parse([]byte(`{"tags":["a","b","c"]}`), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("tags"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, arr)
}

func TestParser_HeterogeneousArrayErrors(t *testing.T) {
	p := New("config.json")
	_, err := p.Parse([]byte(`{"mixed":["a",1]}`), confstack.DefaultParserOptions())
	require.Error(t, err)
	var target *confstack.ErrHeterogeneousArray
	assert.ErrorAs(t, err, &target)
}

func TestParser_TopLevelArrayErrors(t *testing.T) {
	p := New("config.json")
	_, err := p.Parse([]byte(`[1,2,3]`), confstack.DefaultParserOptions())
	require.Error(t, err)
	var target *confstack.ErrTopLevelNotMapping
	assert.ErrorAs(t, err, &target)
}

func TestParser_NullValueIsOmitted(t *testing.T) {
	p := New("config.json")
	snap, err := p.Parse([]byte(`{"a":null,"b":"present"}`), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, _ := snap.Value(confstack.NewAbsoluteConfigKey("a"), confstack.TypeString)
	assert.False(t, r.Found())
	r, _ = snap.Value(confstack.NewAbsoluteConfigKey("b"), confstack.TypeString)
	assert.True(t, r.Found())
}
