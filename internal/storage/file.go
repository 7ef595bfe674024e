package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps each document as <name>.json in one directory
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write stages every document in a temp file first, then renames them into
// place. A crash mid-write leaves the previous file intact.
func (b *FileBackend) Write(ctx context.Context, docs map[string][]byte) error {
	staged := make(map[string]string, len(docs))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, name := range sortedNames(docs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := writeTemp(b.dir, name, docs[name])
		if err != nil {
			return err
		}
		staged[name] = tmp
	}

	for _, name := range sortedNames(staged) {
		if err := os.Rename(staged[name], b.path(name)); err != nil {
			return fmt.Errorf("replace %s: %w", name, err)
		}
		delete(staged, name)
	}
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return f.Name(), nil
}

func (b *FileBackend) Close() error {
	return nil
}
