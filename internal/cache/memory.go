package cache

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("cache store is closed")

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, false, ErrClosed
	}
	rec, ok := s.records[key.String()]
	if !ok {
		return Record{}, false, nil
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return rec, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key Key, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	rec.Data = append([]byte(nil), rec.Data...)
	s.records[key.String()] = rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.records, key.String())
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
