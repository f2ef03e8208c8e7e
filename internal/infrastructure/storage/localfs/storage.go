package localfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Store implements ports.FileStore against the local filesystem.
type Store struct{}

func New() *Store {
	return &Store{}
}

// ListFiles returns the names of the regular files directly inside dir,
// sorted lexicographically. Subdirectories are ignored.
func (*Store) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (*Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Move relocates src into destDir, keeping its base name. Rename is tried
// first; a cross-device move falls back to copy and remove.
func (*Store) Move(src, destDir string) error {
	dest := filepath.Join(destDir, filepath.Base(src))
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("move %s to %s: %w", src, destDir, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
