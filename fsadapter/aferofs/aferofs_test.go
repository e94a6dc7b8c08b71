package aferofs

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

func TestFileSystem_FileContentsFromMemMapFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/config/a.txt", []byte("hello"), 0o644))

	fs := New(mem)
	data, err := fs.FileContents(context.Background(), "/config/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFileSystem_FileContents_MissingReturnsFileNotFound(t *testing.T) {
	fs := New(afero.NewMemMapFs())
	_, err := fs.FileContents(context.Background(), "/no/such/path")
	var target *confstack.FileNotFound
	assert.ErrorAs(t, err, &target)
}

func TestFileSystem_ListFileNames_SkipsDirectories(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/config/a.txt", []byte("x"), 0o644))
	require.NoError(t, mem.MkdirAll("/config/sub", 0o755))

	fs := New(mem)
	names, err := fs.ListFileNames(context.Background(), "/config")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)
}

func TestFileSystem_ResolveSymlinks_IdentityForExistingPath(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/config/a.txt", []byte("x"), 0o644))

	fs := New(mem)
	resolved, err := fs.ResolveSymlinks(context.Background(), "/config/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/config/a.txt", resolved)
}
