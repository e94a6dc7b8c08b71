package textvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestParse_Int(t *testing.T) {
	c, err := Parse("42", confstack.TypeInt, ",")
	require.NoError(t, err)
	n, err := c.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestParseBool_AcceptsCaseInsensitiveGrammar(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "YES"} {
		b, err := ParseBool(v)
		require.NoError(t, err, v)
		assert.True(t, b, v)
	}
	for _, v := range []string{"false", "FALSE", "0", "no", "NO"} {
		b, err := ParseBool(v)
		require.NoError(t, err, v)
		assert.False(t, b, v)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParse_StringArraySplitsAndTrims(t *testing.T) {
	c, err := Parse(" a , b ,c", confstack.TypeStringArray, ",")
	require.NoError(t, err)
	arr, err := c.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, arr)
}

func TestParse_BytesBase64(t *testing.T) {
	c, err := Parse("aGVsbG8=", confstack.TypeBytes, ",")
	require.NoError(t, err)
	b, err := c.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}
