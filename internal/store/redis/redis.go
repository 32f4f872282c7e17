package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"go.uber.org/zap"
)

// Store keeps JSON values as redis strings under a common prefix.
type Store struct {
	client goredis.UniversalClient
	prefix string
	log    *zap.Logger
}

func New(client goredis.UniversalClient, prefix string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client: client,
		prefix: prefix,
		log:    log.Named("store.redis"),
	}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.log.Warn("failed to load value", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := storedomain.Decode(raw, dst); err != nil {
		s.log.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return storedomain.ErrEmptyKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), raw, 0).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, s.key(key))
	}
	return s.client.Del(ctx, prefixed...).Err()
}
