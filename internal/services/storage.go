package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageService keeps generated artifacts (rendered PDFs) on local disk.
type StorageService interface {
	Save(filename string, data []byte) (string, error)
	GetFilePath(filename string) string
	List(prefix string) ([]string, error)
	DeleteFile(filename string) error
	EnsureDir() error
}

type storageService struct {
	basePath string
}

func NewStorageService(basePath string) StorageService {
	return &storageService{
		basePath: basePath,
	}
}

func (s *storageService) EnsureDir() error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return nil
}

// Save writes data atomically under filename and returns the full path.
func (s *storageService) Save(filename string, data []byte) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid artifact name: %q", filename)
	}
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	filePath := s.GetFilePath(filename)
	tmp, err := os.CreateTemp(s.basePath, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	return filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.basePath, filename)
}

// List returns the stored artifact names starting with prefix, sorted.
func (s *storageService) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *storageService) DeleteFile(filename string) error {
	if err := os.Remove(s.GetFilePath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
