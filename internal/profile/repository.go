// Package profile reconciles the locally cached user profile with the remote
// account service and notifies subscribers about the outcome of operations.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/serviceerr"
	"github.com/openkcm/profile-session/pkg/callback"
)

// Repository runs the session operations against a RemoteClient and a Store.
// Operations return immediately; their outcome is only observable through
// subscriptions. Operations of any kind may run concurrently.
type Repository struct {
	scope  *Scope
	remote RemoteClient
	store  Store
	policy Policy
	now    func() time.Time
	meters *meters

	results  map[Kind]*callback.Registry[Result]
	profiles *callback.Registry[Profile]
}

type Option func(*Repository)

// WithPolicy overrides the default 5m/60m TTL thresholds.
func WithPolicy(p Policy) Option {
	return func(r *Repository) { r.policy = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(scope *Scope, remote RemoteClient, store Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		scope:    scope,
		remote:   remote,
		store:    store,
		policy:   DefaultPolicy(),
		now:      time.Now,
		results:  make(map[Kind]*callback.Registry[Result], len(ResultKinds)),
		profiles: callback.NewRegistry[Profile](ProfileChanged.String()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if err := r.policy.Validate(); err != nil {
		return nil, err
	}

	m, err := newMeters(scope.Context())
	if err != nil {
		return nil, fmt.Errorf("initialising meters: %w", err)
	}
	r.meters = m

	for _, kind := range ResultKinds {
		r.results[kind] = callback.NewRegistry[Result](kind.String())
	}

	return r, nil
}

// SubscribeResult subscribes h to the Result events of kind.
func (r *Repository) SubscribeResult(kind Kind, h *callback.Handle[Result]) error {
	reg, err := r.resultRegistry(kind)
	if err != nil {
		return err
	}
	reg.Subscribe(h)

	return nil
}

func (r *Repository) UnsubscribeResult(kind Kind, h *callback.Handle[Result]) error {
	reg, err := r.resultRegistry(kind)
	if err != nil {
		return err
	}
	reg.Unsubscribe(h)

	return nil
}

// SubscribeProfile subscribes h to ProfileChanged events.
func (r *Repository) SubscribeProfile(h *callback.Handle[Profile]) {
	r.profiles.Subscribe(h)
}

func (r *Repository) UnsubscribeProfile(h *callback.Handle[Profile]) {
	r.profiles.Unsubscribe(h)
}

func (r *Repository) resultRegistry(kind Kind) (*callback.Registry[Result], error) {
	reg, ok := r.results[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s carries no result", serviceerr.ErrUnknownKind, kind)
	}

	return reg, nil
}

// Signup creates a new account. Outcome: SignupResult.
func (r *Repository) Signup(email, name, password, confirmPassword string) {
	r.launch("signup", func(ctx context.Context) {
		err := r.remote.CreateAccount(ctx, SignupRequest{
			Name:            name,
			Email:           email,
			Password:        password,
			ConfirmPassword: confirmPassword,
		})
		if err != nil {
			slogctx.Warn(ctx, "Account creation failed", "error", err)
			r.emitResult(ctx, SignupResult, failure(serviceerr.Message(err)))
			return
		}

		slogctx.Info(ctx, "Account created")
		r.emitResult(ctx, SignupResult, success())
	})
}

// Login authenticates and stores the session token. The cached profile is
// marked as never fetched so the next refresh goes to the network.
// Outcome: LoginResult.
func (r *Repository) Login(email, password string) {
	r.launch("login", func(ctx context.Context) {
		token, err := r.remote.Authenticate(ctx, email, password)
		if err != nil {
			slogctx.Warn(ctx, "Authentication failed", "error", err)
			r.emitResult(ctx, LoginResult, failure(serviceerr.Message(err)))
			return
		}
		if ctx.Err() != nil {
			return
		}

		if err := r.store.StoreLastFetchedAt(ctx, 0); err != nil {
			r.storeFailed(ctx, LoginResult, "resetting last fetch time", err)
			return
		}
		if err := r.store.StoreToken(ctx, token); err != nil {
			r.storeFailed(ctx, LoginResult, "storing token", err)
			return
		}

		slogctx.Info(ctx, "Authenticated")
		r.emitResult(ctx, LoginResult, success())
	})
}

// UpdateProfile merges u into the stored profile and sends the complete
// result to the account service. Outcome: ProfileChanged followed by
// ProfileUpdateResult on success, ProfileUpdateResult only on failure.
func (r *Repository) UpdateProfile(u ProfileUpdate) {
	r.launch("update_profile", func(ctx context.Context) {
		stored, err := r.store.LoadProfile(ctx)
		if err != nil {
			r.storeFailed(ctx, ProfileUpdateResult, "loading profile", err)
			return
		}

		merged := u.merge(stored)
		if err := merged.Validate(); err != nil {
			slogctx.Warn(ctx, "Rejected profile update", "error", err)
			r.emitResult(ctx, ProfileUpdateResult, failure(err.Error()))
			return
		}

		token, err := r.store.LoadToken(ctx)
		if err != nil {
			r.storeFailed(ctx, ProfileUpdateResult, "loading token", err)
			return
		}

		if err := r.remote.UpdateProfile(ctx, token, merged); err != nil {
			slogctx.Warn(ctx, "Profile update failed", "error", err)
			r.emitResult(ctx, ProfileUpdateResult, failure(serviceerr.Message(err)))
			return
		}
		if ctx.Err() != nil {
			return
		}

		if err := r.store.StoreProfile(ctx, merged); err != nil {
			r.storeFailed(ctx, ProfileUpdateResult, "storing profile", err)
			return
		}

		slogctx.Info(ctx, "Profile updated")
		r.emitProfile(ctx, merged)
		r.emitResult(ctx, ProfileUpdateResult, success())
	})
}

// RefreshProfile serves the cached profile and/or fetches it depending on its
// age. Outcome: zero, one or two ProfileChanged events, and a
// ProfileRefreshResult whenever the account service was asked.
//
// A failed fetch leaves the cache as it is; the stale profile stays
// authoritative until a later refresh succeeds.
func (r *Repository) RefreshProfile() {
	r.launch("refresh_profile", func(ctx context.Context) {
		lastFetchedAt, err := r.store.LoadLastFetchedAt(ctx)
		if err != nil {
			r.storeFailed(ctx, ProfileRefreshResult, "loading last fetch time", err)
			return
		}

		freshness := r.policy.Evaluate(r.now(), lastFetchedAt)
		r.meters.recordFreshness(ctx, freshness)
		ctx = slogctx.With(ctx, "freshness", freshness.String())

		if freshness != StaleHard {
			cached, err := r.store.LoadProfile(ctx)
			if err != nil {
				r.storeFailed(ctx, ProfileRefreshResult, "loading profile", err)
				return
			}
			r.emitProfile(ctx, cached)
		}

		if freshness == Fresh {
			slogctx.Debug(ctx, "Served cached profile")
			return
		}

		r.fetchProfile(ctx)
	})
}

func (r *Repository) fetchProfile(ctx context.Context) {
	token, err := r.store.LoadToken(ctx)
	if err != nil {
		r.storeFailed(ctx, ProfileRefreshResult, "loading token", err)
		return
	}

	fetched, err := r.remote.FetchProfile(ctx, token)
	if err != nil {
		slogctx.Warn(ctx, "Profile fetch failed; keeping cached profile", "error", err)
		r.emitResult(ctx, ProfileRefreshResult, failure(serviceerr.Message(err)))
		return
	}
	if ctx.Err() != nil {
		return
	}

	if err := r.store.StoreProfile(ctx, fetched); err != nil {
		r.storeFailed(ctx, ProfileRefreshResult, "storing profile", err)
		return
	}
	if err := r.store.StoreLastFetchedAt(ctx, epochMillis(r.now())); err != nil {
		r.storeFailed(ctx, ProfileRefreshResult, "storing last fetch time", err)
		return
	}

	slogctx.Info(ctx, "Profile refreshed from the account service")
	r.emitProfile(ctx, fetched)
	r.emitResult(ctx, ProfileRefreshResult, success())
}

func (r *Repository) launch(operation string, fn func(ctx context.Context)) {
	r.scope.Go(func(ctx context.Context) {
		ctx = slogctx.With(ctx,
			"operation", operation,
			"operation_id", uuid.NewString(),
		)
		fn(ctx)
	})
}

func (r *Repository) storeFailed(ctx context.Context, kind Kind, action string, err error) {
	slogctx.Error(ctx, "Profile store failure", "action", action, "error", err)
	r.emitResult(ctx, kind, failure(fmt.Sprintf("%s: %s", action, err)))
}

// emitResult and emitProfile deliver nothing once the scope is torn down.
func (r *Repository) emitResult(ctx context.Context, kind Kind, res Result) {
	if ctx.Err() != nil {
		slogctx.Debug(ctx, "Dropping result of a cancelled operation", "kind", kind.String())
		return
	}

	r.meters.recordResult(ctx, kind, res)
	r.results[kind].Broadcast(ctx, res)
}

func (r *Repository) emitProfile(ctx context.Context, p Profile) {
	if ctx.Err() != nil {
		slogctx.Debug(ctx, "Dropping profile of a cancelled operation")
		return
	}

	r.profiles.Broadcast(ctx, p)
}
