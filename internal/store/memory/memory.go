package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"go.uber.org/zap"
)

// Store keeps encoded values in process memory.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	log    *zap.Logger
}

func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		values: make(map[string][]byte),
		log:    log.Named("store.memory"),
	}
}

func (s *Store) Get(_ context.Context, key string, dst any) bool {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := storedomain.Decode(raw, dst); err != nil {
		s.log.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Set(_ context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return storedomain.ErrEmptyKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// SetRaw stores bytes as-is.
func (s *Store) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), raw...)
	s.mu.Unlock()
}
