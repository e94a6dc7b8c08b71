package envfileparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestParser_DecodesScreamingSnakeKeysToDottedForm(t *testing.T) {
	p := New("config.env", ",")
	snap, err := p.Parse([]byte("DATABASE_HOST=localhost\nDATABASE_PORT=5432\n"), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("database", "host"), confstack.TypeString)
	require.NoError(t, err)
	require.True(t, r.Found())
	s, _ := r.Value.Content.String()
	assert.Equal(t, "localhost", s)

	r, err = snap.Value(confstack.NewAbsoluteConfigKey("database", "port"), confstack.TypeInt)
	require.NoError(t, err)
	n, _ := r.Value.Content.Int()
	assert.Equal(t, int64(5432), n)
}

func TestParser_ArraySeparatorSplitsOnLookup(t *testing.T) {
	p := New("config.env", ",")
	snap, err := p.Parse([]byte("ALLOWED_HOSTS=a,b,c\n"), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("allowed", "hosts"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, _ := r.Value.Content.StringArray()
	assert.Equal(t, []string{"a", "b", "c"}, arr)
}

func TestParser_MalformedLineIsAParseError(t *testing.T) {
	p := New("config.env", ",")
	_, err := p.Parse([]byte("THIS IS NOT VALID\n"), confstack.DefaultParserOptions())
	assert.Error(t, err)
}

func TestParser_MissingKeyMisses(t *testing.T) {
	p := New("config.env", ",")
	snap, err := p.Parse([]byte("FOO=bar\n"), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("missing"), confstack.TypeString)
	require.NoError(t, err)
	assert.False(t, r.Found())
}
