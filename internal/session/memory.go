package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is the in-process Store used by tests and local development
// without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int64]map[Key][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]map[Key][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID int64, key Key, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[sessionID][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID int64, key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[sessionID] == nil {
		s.data[sessionID] = make(map[Key][]byte)
	}
	s.data[sessionID][key] = raw
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID int64, keys ...Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data[sessionID], key)
	}
	return nil
}
