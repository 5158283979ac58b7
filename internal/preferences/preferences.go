// Package preferences persists the "current image URL" per owner so the last
// uploaded photo survives restarts.
package preferences

import (
	"context"
	"errors"
	"net/url"

	"github.com/go-redis/redis/v8"
)

var (
	// ErrNotSet means no image has been uploaded for the owner yet.
	ErrNotSet = errors.New("preferences: current image url not set")
	// ErrInvalidURL means the stored value does not parse as an absolute URL.
	ErrInvalidURL = errors.New("preferences: current image url is invalid")
)

const keyPrefix = "current_url:"

// KV is the subset of a key/value store the Store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store loads and saves the current image URL.
type Store struct {
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// NewRedisStore builds a Store persisted in Redis without expiry.
func NewRedisStore(client *redis.Client) *Store {
	return NewStore(&redisKV{client: client})
}

// Load returns the owner's current image URL.
func (s *Store) Load(ctx context.Context, owner string) (string, error) {
	value, err := s.kv.Get(ctx, keyPrefix+owner)
	if errors.Is(err, redis.Nil) || (err == nil && value == "") {
		return "", ErrNotSet
	}
	if err != nil {
		return "", err
	}
	if u, perr := url.Parse(value); perr != nil || !u.IsAbs() {
		return "", ErrInvalidURL
	}
	return value, nil
}

// Save replaces the owner's current image URL.
func (s *Store) Save(ctx context.Context, owner, imageURL string) error {
	return s.kv.Set(ctx, keyPrefix+owner, imageURL)
}

type redisKV struct {
	client *redis.Client
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}
