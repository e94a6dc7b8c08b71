package access

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestOpen_WritesHeaderAndCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "access.log")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "confstack access log opened")
}

func TestFileReporter_WritesGlyphAnnotatedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	v := confstack.NewConfigValue(confstack.NewStringContent("x"))
	r.Report(confstack.AccessEvent{
		Metadata: confstack.AccessMetadata{
			Kind:      confstack.AccessGet,
			Key:       confstack.NewAbsoluteConfigKey("foo"),
			ValueType: confstack.TypeString,
			Timestamp: time.Now(),
		},
		ProviderResults: []confstack.ProviderResult{
			{ProviderName: "env", Result: confstack.Hit("FOO", v)},
		},
		Result: &v,
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "✅")
	assert.Contains(t, string(data), "foo")
	assert.Contains(t, string(data), "env")
}

func TestFileReporter_ErrorEventGetsErrorGlyph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	r.Report(confstack.AccessEvent{
		Metadata:  confstack.AccessMetadata{Kind: confstack.AccessFetch, Key: confstack.NewAbsoluteConfigKey("foo")},
		ResultErr: assertErrTest("boom"),
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "❌")
}

type assertErrTest string

func (e assertErrTest) Error() string { return string(e) }
