package inmem

import (
	"sort"
	"strings"
	"sync"
)

// Store is an in-memory key-value account store, used in tests and as
// a zero-dependency default when no database is configured.
type Store struct {
	recordsMutex sync.RWMutex
	records      map[string][]byte
}

func NewStore() *Store {
	return &Store{
		records: make(map[string][]byte),
	}
}

func (s *Store) Get(key string) ([]byte, error) {
	s.recordsMutex.RLock()
	defer s.recordsMutex.RUnlock()

	value, exists := s.records[key]
	if !exists {
		return nil, nil
	}

	snapshot := make([]byte, len(value))
	copy(snapshot, value)

	return snapshot, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.recordsMutex.Lock()
	defer s.recordsMutex.Unlock()

	record := make([]byte, len(value))
	copy(record, value)

	s.records[key] = record

	return nil
}

func (s *Store) Delete(key string) error {
	s.recordsMutex.Lock()
	defer s.recordsMutex.Unlock()

	delete(s.records, key)

	return nil
}

func (s *Store) Keys(prefix string) ([]string, error) {
	s.recordsMutex.RLock()
	defer s.recordsMutex.RUnlock()

	keys := make([]string, 0)

	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys, nil
}

func (s *Store) MGet(keys ...string) ([][]byte, error) {
	s.recordsMutex.RLock()
	defer s.recordsMutex.RUnlock()

	values := make([][]byte, len(keys))

	for index, key := range keys {
		value, exists := s.records[key]
		if !exists {
			continue
		}

		snapshot := make([]byte, len(value))
		copy(snapshot, value)

		values[index] = snapshot
	}

	return values, nil
}
