package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTokenNotFound is returned when a refresh token is absent from the store,
// either because it was revoked or because it expired.
var ErrTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps issued refresh tokens so they can be revoked before their
// JWT expiry. A token that validates cryptographically but is missing from the
// store is rejected.
type TokenStore interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

const tokenKeyPrefix = "refresh_token:"

type redisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore connects to Redis and returns a TokenStore backed by it.
func NewRedisTokenStore(addr, password string, db int) (TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &redisTokenStore{client: client}, nil
}

func (s *redisTokenStore) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (s *redisTokenStore) Lookup(ctx context.Context, token string) (int64, error) {
	userID, err := s.client.Get(ctx, tokenKeyPrefix+token).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return userID, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
