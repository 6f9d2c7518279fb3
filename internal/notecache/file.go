package notecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps one markdown file per entry under a root directory.
type FileStore struct {
	rootDir string
}

func NewFileStore(cacheDirectory string) (*FileStore, error) {
	if err := os.MkdirAll(cacheDirectory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", cacheDirectory, err)
	}
	return &FileStore{
		rootDir: cacheDirectory,
	}, nil
}

// filePath escapes the key so that separators such as ':' and '/' never leave rootDir.
func (store *FileStore) filePath(key string) string {
	return filepath.Join(store.rootDir, url.PathEscape(key)+".md")
}

func (store *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	file, err := os.Open(store.filePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	contents, err := io.ReadAll(file)
	if err != nil {
		return "", false, fmt.Errorf("io.ReadAll > %w", err)
	}
	return string(contents), true, nil
}

func (store *FileStore) Put(_ context.Context, key, text string) error {
	localFilePath := store.filePath(key)
	tmpPath := localFilePath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("os.Create > %w", err)
	}
	if _, err := file.WriteString(text); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("file.Write > %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(tmpPath, localFilePath); err != nil {
		return fmt.Errorf("os.Rename > %w", err)
	}
	return nil
}

func (store *FileStore) Close() error {
	return nil
}
