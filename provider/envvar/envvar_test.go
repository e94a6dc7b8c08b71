package envvar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestProvider_ValueFromMap(t *testing.T) {
	p, err := NewFromMap("env", map[string]string{"DATABASE_PORT": "5432"}, Options{})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("database", "port"), confstack.TypeInt)
	require.NoError(t, err)
	require.True(t, r.Found())
	n, err := r.Value.Content.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(5432), n)
}

func TestProvider_BoolGrammar(t *testing.T) {
	p, err := NewFromMap("env", map[string]string{"FEATURE_FLAG": "yes"}, Options{})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("feature", "flag"), confstack.TypeBool)
	require.NoError(t, err)
	require.True(t, r.Found())
	b, err := r.Value.Content.Bool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestProvider_ArraySeparator(t *testing.T) {
	p, err := NewFromMap("env", map[string]string{"HOSTS": "a.com,b.com"}, Options{})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("hosts"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, err := r.Value.Content.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, arr)
}

func TestProvider_MissingKey(t *testing.T) {
	p, err := NewFromMap("env", map[string]string{}, Options{})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("absent"), confstack.TypeString)
	require.NoError(t, err)
	assert.False(t, r.Found())
}

func TestNew_DotFileMergesOverAmbientEnvironment(t *testing.T) {
	dir := t.TempDir()
	dotfile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotfile, []byte("# comment\nAPP_NAME=fromfile\n\nmalformed-line\nAPP_PORT=9090\n"), 0o644))

	p, err := NewFromMap("env", map[string]string{"APP_NAME": "fromenv"}, Options{DotFilePath: dotfile})
	require.NoError(t, err)

	r, err := p.Value(confstack.NewAbsoluteConfigKey("app", "name"), confstack.TypeString)
	require.NoError(t, err)
	s, _ := r.Value.Content.String()
	assert.Equal(t, "fromfile", s, ".env file entries win over the ambient environment")

	r2, err := p.Value(confstack.NewAbsoluteConfigKey("app", "port"), confstack.TypeInt)
	require.NoError(t, err)
	assert.True(t, r2.Found())
}

func TestNew_AllowMissingDotFile(t *testing.T) {
	p, err := NewFromMap("env", map[string]string{}, Options{
		DotFilePath:         "/nonexistent/.env",
		AllowMissingDotFile: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNew_MissingDotFileWithoutAllowMissingErrors(t *testing.T) {
	_, err := NewFromMap("env", map[string]string{}, Options{DotFilePath: "/nonexistent/.env"})
	assert.Error(t, err)
}
