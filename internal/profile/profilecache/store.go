// Package profilecache keeps the profile session in process memory.
package profilecache

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/profile-session/internal/profile"
)

const (
	keyToken         = "user_token"
	keyProfile       = "user_profile"
	keyLastFetchedAt = "user_last_update"
)

type Store struct {
	cache     *cache.Cache
	namespace string
}

var _ = profile.Store(&Store{})

// NewStore returns an empty store. Entries never expire.
func NewStore(namespace string) *Store {
	return NewStoreFrom(cache.New(cache.NoExpiration, 0), namespace)
}

// NewStoreFrom uses c as backing cache, which allows several namespaces to share it.
func NewStoreFrom(c *cache.Cache, namespace string) *Store {
	return &Store{cache: c, namespace: namespace}
}

func (s *Store) LoadProfile(_ context.Context) (profile.Profile, error) {
	return get[profile.Profile](s, keyProfile)
}

func (s *Store) StoreProfile(_ context.Context, p profile.Profile) error {
	s.cache.Set(s.key(keyProfile), p, cache.NoExpiration)
	return nil
}

func (s *Store) LoadToken(_ context.Context) (string, error) {
	return get[string](s, keyToken)
}

func (s *Store) StoreToken(_ context.Context, token string) error {
	s.cache.Set(s.key(keyToken), token, cache.NoExpiration)
	return nil
}

func (s *Store) LoadLastFetchedAt(_ context.Context) (int64, error) {
	return get[int64](s, keyLastFetchedAt)
}

func (s *Store) StoreLastFetchedAt(_ context.Context, epochMillis int64) error {
	s.cache.Set(s.key(keyLastFetchedAt), epochMillis, cache.NoExpiration)
	return nil
}

// Clear drops every entry of the namespace.
func (s *Store) Clear(_ context.Context) error {
	for _, name := range []string{keyToken, keyProfile, keyLastFetchedAt} {
		s.cache.Delete(s.key(name))
	}
	return nil
}

func (s *Store) key(name string) string {
	return s.namespace + ":" + name
}

// get returns the zero value for a missing key.
func get[T any](s *Store, name string) (T, error) {
	var zero T

	v, ok := s.cache.Get(s.key(name))
	if !ok {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected %T stored under %s", v, s.key(name))
	}

	return typed, nil
}
