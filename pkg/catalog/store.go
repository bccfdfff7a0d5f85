package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const catalogFile = "catalog.json"

// FileStore keeps the catalog in a single JSON file
type FileStore struct {
	dataDir string
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewFileStore opens or creates a catalog in dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	s := &FileStore{
		dataDir: dataDir,
		entries: make(map[string]*Entry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Put inserts or replaces an entry
func (s *FileStore) Put(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.entries[e.RunID] = &cp
	return s.save()
}

// Get retrieves an entry by run id
func (s *FileStore) Get(_ context.Context, runID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	cp := *e
	return &cp, nil
}

// List returns matching entries, newest first
func (s *FileStore) List(_ context.Context, f Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Close is a no-op; every Put is already on disk
func (s *FileStore) Close() error { return nil }

// save writes the catalog atomically. Caller holds the lock.
func (s *FileStore) save() error {
	list := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].RunID < list[j].RunID })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dataDir, catalogFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, catalogFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var list []*Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}
	for _, e := range list {
		s.entries[e.RunID] = e
	}
	return nil
}
