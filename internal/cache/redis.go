package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key Key) (Record, bool, error) {
	data, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Set also hands the expiry to Redis so abandoned entries do not linger.
func (s *RedisStore) Set(ctx context.Context, key Key, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	return s.client.Set(ctx, key.String(), data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, key.String()).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
