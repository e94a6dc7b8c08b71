// Package osfs implements confstack.FileSystem directly against the host
// filesystem via the standard library.
package osfs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mapoio/confstack"
)

// FileSystem is the os-backed confstack.FileSystem collaborator.
type FileSystem struct{}

var _ confstack.FileSystem = FileSystem{}

// New returns the os-backed filesystem. It holds no state, so the zero
// value is equally usable.
func New() FileSystem { return FileSystem{} }

func (FileSystem) FileContents(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &confstack.FileNotFound{Path: path}
		}
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	return data, nil
}

func (FileSystem) LastModified(_ context.Context, path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, &confstack.FileNotFound{Path: path}
		}
		return time.Time{}, &confstack.IoError{Path: path, Cause: err}
	}
	return info.ModTime(), nil
}

func (FileSystem) ListFileNames(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &confstack.FileNotFound{Path: path}
		}
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (FileSystem) ResolveSymlinks(_ context.Context, path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &confstack.FileNotFound{Path: path}
		}
		return "", &confstack.IoError{Path: path, Cause: err}
	}
	return resolved, nil
}
