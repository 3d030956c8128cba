package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store loads and persists the configuration document.
type Store interface {
	Load() (*Section, error)
	Save(root *Section) error
}

// FileStore keeps the document in a single JSON file. A missing file loads as
// an empty document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Section, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSection(""), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", s.path, err)
	}
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", s.path, err)
	}
	return root, nil
}

// Save writes the document next to its destination and renames it into place
// so readers never observe a half-written file.
func (s *FileStore) Save(root *Section) error {
	data, err := encodeIndented(root)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".itemcreator-*.json")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: replace %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore holds the document in memory. Saves store a deep copy.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore(root *Section) (*MemoryStore, error) {
	store := &MemoryStore{}
	if root != nil {
		if err := store.Save(root); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *MemoryStore) Load() (*Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.data)
}

func (s *MemoryStore) Save(root *Section) error {
	data, err := encodeIndented(root)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

func encodeIndented(root *Section) ([]byte, error) {
	raw, err := root.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
