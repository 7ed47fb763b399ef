package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// policyDocument is the synced key-value shape user patterns arrive in.
type policyDocument struct {
	NetworkBlockPatterns []string `json:"networkBlockPatterns"`
}

// FileStore is a PolicyStore backed by a JSON file, the local stand-in for
// the host's policy-sync storage.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a store reading from path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NetworkBlockPatterns reads the current user patterns. A missing file is
// an empty pattern set, not an error.
func (s *FileStore) NetworkBlockPatterns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read policy store: %w", err)
	}

	var doc policyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy store: %w", err)
	}
	return doc.NetworkBlockPatterns, nil
}

// StaticStore is a PolicyStore over a fixed in-memory pattern list.
type StaticStore struct {
	Patterns []string
}

func (s *StaticStore) NetworkBlockPatterns(_ context.Context) ([]string, error) {
	return s.Patterns, nil
}
