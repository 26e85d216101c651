package auth

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	redisclient "github.com/lsalmeida/ecoeletronico-backend/pkg/redis"
)

// RedisCodeStore keeps recovery codes in Redis keyed by a hash of the email.
type RedisCodeStore struct {
	client *redisclient.Client
}

// NewRedisCodeStore wraps the shared Redis client for recovery code storage.
func NewRedisCodeStore(client *redisclient.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) SetCode(ctx context.Context, emailHash, code string, cfg config.RecoveryConfig) error {
	return s.client.Set(ctx, s.client.RecoveryCodeKey(emailHash), code, cfg.CodeTTL)
}

// GetCode returns the stored code, or empty when none exists.
func (s *RedisCodeStore) GetCode(ctx context.Context, emailHash string) (string, error) {
	value, err := s.client.Get(ctx, s.client.RecoveryCodeKey(emailHash))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *RedisCodeStore) DeleteCode(ctx context.Context, emailHash string) error {
	return s.client.Del(ctx, s.client.RecoveryCodeKey(emailHash))
}
