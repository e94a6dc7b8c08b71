// Package aferofs implements confstack.FileSystem over spf13/afero, letting
// callers substitute an in-memory filesystem (afero.NewMemMapFs) in tests
// without touching the host disk.
package aferofs

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/mapoio/confstack"
)

// FileSystem adapts an afero.Fs to confstack.FileSystem.
type FileSystem struct {
	fs afero.Fs
}

var _ confstack.FileSystem = FileSystem{}

// New wraps fs as a confstack.FileSystem.
func New(fs afero.Fs) FileSystem { return FileSystem{fs: fs} }

func (a FileSystem) FileContents(_ context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &confstack.FileNotFound{Path: path}
		}
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	return data, nil
}

func (a FileSystem) LastModified(_ context.Context, path string) (time.Time, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, &confstack.FileNotFound{Path: path}
		}
		return time.Time{}, &confstack.IoError{Path: path, Cause: err}
	}
	return info.ModTime(), nil
}

func (a FileSystem) ListFileNames(_ context.Context, path string) ([]string, error) {
	entries, err := afero.ReadDir(a.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &confstack.FileNotFound{Path: path}
		}
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ResolveSymlinks reports path unchanged: afero's in-memory and OS-wrapping
// filesystems are used here chiefly for hermetic tests, where paths never
// carry real symlinks worth resolving. It still surfaces a missing path as
// FileNotFound so callers (the reloading provider's poll loop) see the same
// error shape as osfs.
func (a FileSystem) ResolveSymlinks(_ context.Context, path string) (string, error) {
	if _, err := a.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", &confstack.FileNotFound{Path: path}
		}
		return "", &confstack.IoError{Path: path, Cause: err}
	}
	return path, nil
}
