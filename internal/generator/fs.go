package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystem is the I/O boundary of a Runner.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFileSystem reads and writes files relative to Root.
type OSFileSystem struct {
	Root string
}

// NewOSFileSystem returns a FileSystem rooted at the workspace directory.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{Root: root}
}

// Resolve returns the absolute path for a workspace-relative path.
func (f *OSFileSystem) Resolve(path string) string {
	if filepath.IsAbs(path) || f.Root == "" {
		return path
	}
	return filepath.Join(f.Root, path)
}

func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(f.Resolve(path))
}

// WriteFile replaces path atomically: the data goes to a temporary file in
// the same directory which is then renamed over the target.
func (f *OSFileSystem) WriteFile(path string, data []byte) error {
	path = f.Resolve(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
