package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	locationKeyPrefix = "location:"
	claimKeyPrefix    = "claim:"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Addr        string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password    string        `yaml:"password" envconfig:"REDIS_PASSWORD" json:"-"`
	DB          int           `yaml:"db" envconfig:"REDIS_DB" default:"0"`
	LocationTTL time.Duration `yaml:"locationTTL" envconfig:"REDIS_LOCATION_TTL" default:"10m"`
	ClaimTTL    time.Duration `yaml:"claimTTL" envconfig:"REDIS_CLAIM_TTL" default:"24h"`
}

// NewClient returns nil when no address is configured.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Store is a typed JSON cache over redis.
type Store[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewLocationStore[T any](client *redis.Client, ttl time.Duration) *Store[T] {
	return &Store[T]{client: client, prefix: locationKeyPrefix, ttl: ttl}
}

// Get reports false on a cache miss.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return v, false, nil
		}
		return v, false, err
	}
	if err = json.Unmarshal(data, &v); err != nil {
		return v, false, err
	}
	return v, true, nil
}

func (s *Store[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

func (s *Store[T]) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Claims hands out one-time keys, used to suppress duplicate event delivery.
type Claims struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClaims(client *redis.Client, ttl time.Duration) *Claims {
	return &Claims{client: client, ttl: ttl}
}

func (c *Claims) Claim(ctx context.Context, key string) (bool, error) {
	return c.client.SetNX(ctx, claimKeyPrefix+key, 1, c.ttl).Result()
}

func (c *Claims) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, claimKeyPrefix+key).Err()
}
