package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage is a blob store on the local filesystem. Files are laid
// out as <root>/<project_id>/<folder segments...>/<stored_name>.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Write persists the blob durably and returns its physical path. The
// file is synced to disk before returning so callers can safely commit
// the database record afterwards; a crash in between leaves at worst an
// orphaned blob, never a record pointing at a missing one.
func (s *LocalStorage) Write(projectID, folderPath, storedName string, data []byte) (string, error) {
	dir := filepath.Join(s.root, projectID)
	if folderPath != "" {
		for _, segment := range strings.Split(folderPath, "/") {
			dir = filepath.Join(dir, segment)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, storedName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) Read(physicalPath string) ([]byte, error) {
	data, err := os.ReadFile(physicalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *LocalStorage) Delete(physicalPath string) error {
	if err := os.Remove(physicalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteTree removes a folder directory and everything beneath it.
func (s *LocalStorage) DeleteTree(projectID, folderPath string) error {
	dir := filepath.Join(s.root, projectID)
	for _, segment := range strings.Split(folderPath, "/") {
		dir = filepath.Join(dir, segment)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	return nil
}
