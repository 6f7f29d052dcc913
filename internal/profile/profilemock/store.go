package profilemock

import (
	"context"
	"sync"

	"github.com/openkcm/profile-session/internal/profile"
)

type StoreOption func(*Store)

// Store is an in-memory profile.Store that records writes and can be told to fail.
type Store struct {
	mu sync.Mutex

	profile       profile.Profile
	token         string
	lastFetchedAt int64
	writes        []string

	loadProfileErr, storeProfileErr         error
	loadTokenErr, storeTokenErr             error
	loadLastFetchedErr, storeLastFetchedErr error
}

var _ = profile.Store(&Store{})

func WithProfile(p profile.Profile) StoreOption {
	return func(s *Store) { s.profile = p }
}
func WithToken(token string) StoreOption {
	return func(s *Store) { s.token = token }
}
func WithLastFetchedAt(epochMillis int64) StoreOption {
	return func(s *Store) { s.lastFetchedAt = epochMillis }
}
func WithLoadProfileError(err error) StoreOption {
	return func(s *Store) { s.loadProfileErr = err }
}
func WithStoreProfileError(err error) StoreOption {
	return func(s *Store) { s.storeProfileErr = err }
}
func WithLoadTokenError(err error) StoreOption {
	return func(s *Store) { s.loadTokenErr = err }
}
func WithStoreTokenError(err error) StoreOption {
	return func(s *Store) { s.storeTokenErr = err }
}
func WithLoadLastFetchedAtError(err error) StoreOption {
	return func(s *Store) { s.loadLastFetchedErr = err }
}
func WithStoreLastFetchedAtError(err error) StoreOption {
	return func(s *Store) { s.storeLastFetchedErr = err }
}

func NewInMemStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) LoadProfile(_ context.Context) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadProfileErr != nil {
		return profile.Profile{}, s.loadProfileErr
	}
	return s.profile, nil
}

func (s *Store) StoreProfile(_ context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeProfileErr != nil {
		return s.storeProfileErr
	}
	s.profile = p
	s.writes = append(s.writes, "profile")
	return nil
}

func (s *Store) LoadToken(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadTokenErr != nil {
		return "", s.loadTokenErr
	}
	return s.token, nil
}

func (s *Store) StoreToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeTokenErr != nil {
		return s.storeTokenErr
	}
	s.token = token
	s.writes = append(s.writes, "token")
	return nil
}

func (s *Store) LoadLastFetchedAt(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadLastFetchedErr != nil {
		return 0, s.loadLastFetchedErr
	}
	return s.lastFetchedAt, nil
}

func (s *Store) StoreLastFetchedAt(_ context.Context, epochMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeLastFetchedErr != nil {
		return s.storeLastFetchedErr
	}
	s.lastFetchedAt = epochMillis
	s.writes = append(s.writes, "lastFetchedAt")
	return nil
}

// Snapshot returns the stored values without going through the error hooks.
func (s *Store) Snapshot() (profile.Profile, profile.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, profile.Session{Token: s.token, LastFetchedAt: s.lastFetchedAt}
}

// Writes lists the groups written so far, in order.
func (s *Store) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}
