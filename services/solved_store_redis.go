// File: services/solved_store_redis.go
package services

import (
	"context"
	"fmt"

	"ctf-catalog/logger"
	"ctf-catalog/models"
	"github.com/redis/go-redis/v9"
)

// RedisSolvedStore keeps one hash per owner: field = record key, value = "true".
type RedisSolvedStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSolvedStore connects and pings the server.
func NewRedisSolvedStore(ctx context.Context, address, password string, db int, prefix string) (*RedisSolvedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info.Printf("[NewRedisSolvedStore] connected to %s", address)
	return &RedisSolvedStore{client: client, prefix: prefix}, nil
}

func (s *RedisSolvedStore) ownerKey(owner string) string {
	return "ctf:solved:" + owner
}

func (s *RedisSolvedStore) MarkSolved(ctx context.Context, owner string, key models.ChallengeKey) error {
	if err := s.client.HSet(ctx, s.ownerKey(owner), StorageKey(s.prefix, key), "true").Err(); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

func (s *RedisSolvedStore) IsSolved(ctx context.Context, owner string, key models.ChallengeKey) (bool, error) {
	val, err := s.client.HGet(ctx, s.ownerKey(owner), StorageKey(s.prefix, key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read solved: %w", err)
	}
	return val == "true", nil
}

func (s *RedisSolvedStore) Close() error {
	return s.client.Close()
}
