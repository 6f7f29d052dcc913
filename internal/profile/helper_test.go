package profile_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/internal/profile/profilemock"
	"github.com/openkcm/profile-session/pkg/callback"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type event struct {
	Kind    profile.Kind
	Result  profile.Result
	Profile profile.Profile
}

// eventLog subscribes to every kind and keeps the events in arrival order.
type eventLog struct {
	mu     sync.Mutex
	events []event
}

func (l *eventLog) add(e event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event(nil), l.events...)
}

func (l *eventLog) ofKind(kind profile.Kind) []event {
	var out []event
	for _, e := range l.all() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) kinds() []profile.Kind {
	var out []profile.Kind
	for _, e := range l.all() {
		out = append(out, e.Kind)
	}
	return out
}

func subscribeAll(t *testing.T, repo *profile.Repository) *eventLog {
	t.Helper()

	log := &eventLog{}
	for _, kind := range profile.ResultKinds {
		h := callback.NewHandle("log-"+kind.String(), func(_ context.Context, res profile.Result) {
			log.add(event{Kind: kind, Result: res})
		})
		require.NoError(t, repo.SubscribeResult(kind, h))
	}
	repo.SubscribeProfile(callback.NewHandle("log-profile", func(_ context.Context, p profile.Profile) {
		log.add(event{Kind: profile.ProfileChanged, Profile: p})
	}))

	return log
}

type fixture struct {
	scope  *profile.Scope
	repo   *profile.Repository
	store  *profilemock.Store
	remote *profilemock.Remote
	log    *eventLog
}

func newFixture(t *testing.T, store *profilemock.Store, remote *profilemock.Remote, opts ...profile.Option) *fixture {
	t.Helper()

	scope := profile.NewScope(t.Context())
	t.Cleanup(scope.Close)

	opts = append([]profile.Option{profile.WithClock(func() time.Time { return testNow })}, opts...)
	repo, err := profile.NewRepository(scope, remote, store, opts...)
	require.NoError(t, err)

	return &fixture{
		scope:  scope,
		repo:   repo,
		store:  store,
		remote: remote,
		log:    subscribeAll(t, repo),
	}
}

func ptr(s string) *string {
	return &s
}

func millisAgo(d time.Duration) int64 {
	return testNow.Add(-d).UnixMilli()
}
