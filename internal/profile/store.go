package profile

import "context"

// Store persists the profile, the token and the last fetch time of the local
// session. The three groups are read and written independently.
type Store interface {
	LoadProfile(ctx context.Context) (Profile, error)
	StoreProfile(ctx context.Context, p Profile) error
	LoadToken(ctx context.Context) (string, error)
	StoreToken(ctx context.Context, token string) error
	// LastFetchedAt returns epoch milliseconds, 0 if the profile was never fetched.
	LoadLastFetchedAt(ctx context.Context) (int64, error)
	StoreLastFetchedAt(ctx context.Context, epochMillis int64) error
}
