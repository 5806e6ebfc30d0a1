package memory

import (
	"context"

	"whisper-client/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// KeyValueStore keeps state for the lifetime of the process only.
type KeyValueStore struct {
	cache *cache.Cache
}

func NewKeyValueStore() contract.KeyValueStore {
	return &KeyValueStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := s.cache.Get(key); found {
		stored := x.([]byte)
		out := make([]byte, len(stored))
		copy(out, stored)
		return out, true, nil
	}
	return nil, false, nil
}

func (s *KeyValueStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, cache.NoExpiration)
	return nil
}

func (s *KeyValueStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

func (s *KeyValueStore) Close() error {
	s.cache.Flush()
	return nil
}
