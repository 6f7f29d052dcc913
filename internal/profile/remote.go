package profile

import "context"

// SignupRequest is the account creation payload.
type SignupRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RemoteClient is the remote account service. Failures are reported as
// *serviceerr.NetworkError. Bounding the duration of calls is up to the
// implementation.
type RemoteClient interface {
	CreateAccount(ctx context.Context, req SignupRequest) error
	Authenticate(ctx context.Context, email, password string) (token string, _ error)
	FetchProfile(ctx context.Context, token string) (Profile, error)
	UpdateProfile(ctx context.Context, token string, p Profile) error
}
