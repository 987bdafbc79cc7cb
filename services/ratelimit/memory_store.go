package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
)

type memoryEntry struct {
	entry     model.RateLimitEntry
	expiresAt time.Time
}

type memoryBlock struct {
	block     model.BlockRecord
	expiresAt time.Time
}

// MemoryStore is the single-instance backend. Values are copied in and out
// so callers never share state with the map.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   shared.Clock
	entries map[string]memoryEntry
	blocks  map[string]memoryBlock
}

func NewMemoryStore(clock shared.Clock) *MemoryStore {
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]memoryEntry),
		blocks:  make(map[string]memoryBlock),
	}
}

func (s *MemoryStore) GetEntry(_ context.Context, key string) (*model.RateLimitEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(item.expiresAt) {
		return nil, nil
	}
	entry := item.entry
	return &entry, nil
}

func (s *MemoryStore) SaveEntry(_ context.Context, key string, entry *model.RateLimitEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = memoryEntry{entry: *entry, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) DeleteEntry(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetBlock(_ context.Context, key string) (*model.BlockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.blocks[key]
	if !ok || !s.clock.Now().Before(item.expiresAt) {
		return nil, nil
	}
	block := item.block
	return &block, nil
}

func (s *MemoryStore) SaveBlock(_ context.Context, key string, block *model.BlockRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		delete(s.blocks, key)
		return nil
	}
	s.blocks[key] = memoryBlock{block: *block, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) DeleteBlock(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.blocks, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, item := range s.entries {
		if !now.Before(item.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	for key, item := range s.blocks {
		if !now.Before(item.expiresAt) {
			delete(s.blocks, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored entries and blocks, expired or not.
func (s *MemoryStore) Len() (entries int, blocks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), len(s.blocks)
}
