package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File keeps the running count as a decimal integer in a text file.
type File struct {
	path string
}

func OpenFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty count file path")
	}
	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, err
		}
	}
	return &File{path: path}, nil
}

func (f *File) Close() error { return nil }
func (f *File) Kind() string { return "file" }
func (f *File) Path() string { return f.path }

func (f *File) Load(ctx context.Context) (int, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("corrupt count file %s: %w", f.path, err)
	}
	return v, nil
}

// Save replaces the file through a rename so readers never see a partial
// write.
func (f *File) Save(ctx context.Context, value int) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".count-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.WriteString(strconv.Itoa(value) + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
