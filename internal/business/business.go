package business

import (
	"context"
	"fmt"
	"net/http"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/authapi"
	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/internal/profile/profilecache"
	"github.com/openkcm/profile-session/internal/profile/profilesql"
	"github.com/openkcm/profile-session/internal/profile/profilevalkey"
	"github.com/openkcm/profile-session/internal/serviceerr"
)

// session bundles a repository with the resources backing it.
type session struct {
	scope   *profile.Scope
	repo    *profile.Repository
	closeFn func()
}

// close tears the scope down before releasing the store.
func (s *session) close() {
	s.scope.Close()
	s.closeFn()
}

func initSession(ctx context.Context, cfg *config.Config) (*session, error) {
	store, closeFn, err := storeFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise the profile store: %w", err)
	}

	remote, err := remoteFromConfig(cfg)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialise the account service client: %w", err)
	}

	scope := profile.NewScope(ctx)
	repo, err := profile.NewRepository(scope, remote, store, profile.WithPolicy(profile.Policy{
		SoftTTL: cfg.Freshness.SoftTTL,
		HardTTL: cfg.Freshness.HardTTL,
	}))
	if err != nil {
		scope.Close()
		closeFn()
		return nil, fmt.Errorf("failed to create the profile repository: %w", err)
	}

	return &session{scope: scope, repo: repo, closeFn: closeFn}, nil
}

// sessionStore is a profile store whose session can be dropped as a whole.
type sessionStore interface {
	profile.Store
	Clear(ctx context.Context) error
}

func storeFromConfig(ctx context.Context, cfg *config.Config) (_ sessionStore, closeFn func(), _ error) {
	namespace := cfg.Store.Namespace
	ctx = slogctx.With(ctx, "store", string(cfg.Store.Type), "namespace", namespace)

	switch cfg.Store.Type {
	case config.StoreTypeMemory, "":
		slogctx.Debug(ctx, "Using the in-memory profile store")
		return profilecache.NewStore(namespace), func() {}, nil
	case config.StoreTypeValKey:
		client, err := valkeyClientFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}

		slogctx.Debug(ctx, "Using the ValKey profile store")
		return profilevalkey.NewStore(client, cfg.ValKey.Prefix, namespace), client.Close, nil
	case config.StoreTypePostgres:
		pool, err := pgxPoolFromConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		slogctx.Debug(ctx, "Using the PostgreSQL profile store")
		return profilesql.NewStore(pool, namespace), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", serviceerr.ErrUnknownStoreType, cfg.Store.Type)
	}
}

func valkeyClientFromConfig(cfg *config.Config) (valkey.Client, error) {
	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to load valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.User)
	if err != nil {
		return nil, fmt.Errorf("failed to load valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to load valkey password: %w", err)
	}

	valkeyOpts := valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	}

	if cfg.ValKey.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.ValKey.SecretRef.MTLS)
		if err != nil {
			return nil, fmt.Errorf("failed to load valkey mTLS config from secret ref: %w", err)
		}

		valkeyOpts.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new valkey client: %w", err)
	}

	return client, nil
}

func pgxPoolFromConfig(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to make dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise pgxpool connection: %w", err)
	}

	return pool, nil
}

func remoteFromConfig(cfg *config.Config) (*authapi.Client, error) {
	httpClient := &http.Client{Timeout: cfg.Remote.Timeout}

	if cfg.Remote.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.Remote.SecretRef.MTLS)
		if err != nil {
			return nil, fmt.Errorf("failed to load account service mTLS config from secret ref: %w", err)
		}

		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}

	return authapi.NewClient(cfg.Remote.BaseURL, httpClient)
}
