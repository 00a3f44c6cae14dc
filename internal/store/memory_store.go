package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	apperrors "codeberg.org/algopatterns/academy/internal/errors"
)

// implements Store using in-memory maps
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[Key][]byte
	closed bool
}

// creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[Key][]byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, table string, key Key) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, unavailable("get", errClosed)
	}

	body, exists := s.tables[table][key]
	if !exists {
		return nil, fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
	}

	return slices.Clone(body), nil
}

func (s *MemoryStore) Put(_ context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("put", errClosed)
	}

	s.table(table)[key] = slices.Clone(body)
	return nil
}

func (s *MemoryStore) PutIfAbsent(_ context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("put if absent", errClosed)
	}

	items := s.table(table)
	if _, exists := items[key]; exists {
		return fmt.Errorf("%s %s: %w", table, key, apperrors.ErrConditionFailed)
	}

	items[key] = slices.Clone(body)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, table string, key Key, patch map[string]any) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, unavailable("update", errClosed)
	}

	items := s.table(table)
	body, exists := items[key]
	if !exists {
		return nil, fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
	}

	merged, err := mergeBody(body, patch)
	if err != nil {
		return nil, err
	}

	items[key] = merged
	return slices.Clone(merged), nil
}

func (s *MemoryStore) Query(_ context.Context, table string, partition string) ([][]byte, error) {
	if err := validateKey(table, Key{Partition: partition}); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, unavailable("query", errClosed)
	}

	var keys []Key
	for key := range s.tables[table] {
		if key.Partition == partition {
			keys = append(keys, key)
		}
	}

	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.Sort, b.Sort)
	})

	bodies := make([][]byte, 0, len(keys))
	for _, key := range keys {
		bodies = append(bodies, slices.Clone(s.tables[table][key]))
	}

	return bodies, nil
}

// marks the store unavailable; later calls fail with ErrStoreUnavailable
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// must be called with mu held for writing
func (s *MemoryStore) table(name string) map[Key][]byte {
	items, exists := s.tables[name]
	if !exists {
		items = make(map[Key][]byte)
		s.tables[name] = items
	}

	return items
}
