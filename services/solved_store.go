// File: services/solved_store.go
package services

import (
	"context"
	"fmt"
	"sync"

	"ctf-catalog/models"
)

// DefaultKeyPrefix namespaces solved-state records.
const DefaultKeyPrefix = "ctf_solved_"

// SolvedStore persists one boolean per solved challenge per browser.
// Records are only ever added; nothing in the application clears them.
type SolvedStore interface {
	MarkSolved(ctx context.Context, owner string, key models.ChallengeKey) error
	IsSolved(ctx context.Context, owner string, key models.ChallengeKey) (bool, error)
	Close() error
}

// StorageKey is the namespaced record key, e.g. "ctf_solved_1-warmup".
func StorageKey(prefix string, key models.ChallengeKey) string {
	return prefix + string(key)
}

// ------------------- memory -------------------

// MemorySolvedStore keeps records for the life of the process.
type MemorySolvedStore struct {
	mu      sync.Mutex
	prefix  string
	records map[string]map[string]bool
}

// NewMemorySolvedStore creates an empty store.
func NewMemorySolvedStore(prefix string) *MemorySolvedStore {
	return &MemorySolvedStore{prefix: prefix, records: make(map[string]map[string]bool)}
}

func (s *MemorySolvedStore) MarkSolved(_ context.Context, owner string, key models.ChallengeKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byOwner, ok := s.records[owner]
	if !ok {
		byOwner = make(map[string]bool)
		s.records[owner] = byOwner
	}
	byOwner[StorageKey(s.prefix, key)] = true
	return nil
}

func (s *MemorySolvedStore) IsSolved(_ context.Context, owner string, key models.ChallengeKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[owner][StorageKey(s.prefix, key)], nil
}

// Keys lists the stored record keys of one owner.
func (s *MemorySolvedStore) Keys(owner string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.records[owner]))
	for k := range s.records[owner] {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemorySolvedStore) Close() error { return nil }

// ------------------- factory -------------------

// StoreOptions selects and configures a SolvedStore.
type StoreOptions struct {
	Type          string
	KeyPrefix     string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// OpenSolvedStore builds the configured store.
func OpenSolvedStore(ctx context.Context, opts StoreOptions) (SolvedStore, error) {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	switch opts.Type {
	case "", "memory":
		return NewMemorySolvedStore(prefix), nil
	case "sqlite":
		return NewSQLiteSolvedStore(ctx, opts.SQLitePath, prefix)
	case "redis":
		return NewRedisSolvedStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, prefix)
	}
	return nil, fmt.Errorf("unknown storage type %q", opts.Type)
}
