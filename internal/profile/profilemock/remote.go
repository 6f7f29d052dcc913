package profilemock

import (
	"context"
	"sync"

	"github.com/openkcm/profile-session/internal/profile"
)

type RemoteOption func(*Remote)

// Call is a recorded invocation of the remote client.
type Call struct {
	Method  string
	Token   string
	Signup  profile.SignupRequest
	Email   string
	Profile profile.Profile
}

// Remote is a scripted profile.RemoteClient.
type Remote struct {
	mu    sync.Mutex
	calls []Call

	token   string
	profile profile.Profile
	block   chan struct{}

	createErr, authErr, fetchErr, updateErr error
	onCall                                  func(Call)
}

var _ = profile.RemoteClient(&Remote{})

func WithAuthToken(token string) RemoteOption {
	return func(r *Remote) { r.token = token }
}
func WithRemoteProfile(p profile.Profile) RemoteOption {
	return func(r *Remote) { r.profile = p }
}
func WithCreateAccountError(err error) RemoteOption {
	return func(r *Remote) { r.createErr = err }
}
func WithAuthenticateError(err error) RemoteOption {
	return func(r *Remote) { r.authErr = err }
}
func WithFetchProfileError(err error) RemoteOption {
	return func(r *Remote) { r.fetchErr = err }
}
func WithUpdateProfileError(err error) RemoteOption {
	return func(r *Remote) { r.updateErr = err }
}

// WithOnCall runs fn when a call is issued, before it returns.
func WithOnCall(fn func(Call)) RemoteOption {
	return func(r *Remote) { r.onCall = fn }
}

// WithBlock makes every call wait until block is closed or the context ends.
func WithBlock(block chan struct{}) RemoteOption {
	return func(r *Remote) { r.block = block }
}

func NewRemote(opts ...RemoteOption) *Remote {
	r := &Remote{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Remote) CreateAccount(ctx context.Context, req profile.SignupRequest) error {
	if err := r.record(ctx, Call{Method: "CreateAccount", Signup: req}); err != nil {
		return err
	}
	return r.createErr
}

func (r *Remote) Authenticate(ctx context.Context, email, _ string) (string, error) {
	if err := r.record(ctx, Call{Method: "Authenticate", Email: email}); err != nil {
		return "", err
	}
	if r.authErr != nil {
		return "", r.authErr
	}
	return r.token, nil
}

func (r *Remote) FetchProfile(ctx context.Context, token string) (profile.Profile, error) {
	if err := r.record(ctx, Call{Method: "FetchProfile", Token: token}); err != nil {
		return profile.Profile{}, err
	}
	if r.fetchErr != nil {
		return profile.Profile{}, r.fetchErr
	}
	return r.profile, nil
}

func (r *Remote) UpdateProfile(ctx context.Context, token string, p profile.Profile) error {
	if err := r.record(ctx, Call{Method: "UpdateProfile", Token: token, Profile: p}); err != nil {
		return err
	}
	return r.updateErr
}

// Calls returns the recorded calls in order.
func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns the number of recorded calls of method.
func (r *Remote) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (r *Remote) record(ctx context.Context, c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if r.onCall != nil {
		r.onCall(c)
	}

	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
