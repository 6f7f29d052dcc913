package business

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/config"
)

// ResetMain drops the session of the configured namespace from the store.
func ResetMain(ctx context.Context, cfg *config.Config) error {
	store, closeFn, err := storeFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise the profile store: %w", err)
	}
	defer closeFn()

	return resetSession(ctx, store, cfg.Store.Namespace)
}

func resetSession(ctx context.Context, store sessionStore, namespace string) error {
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear the profile session: %w", err)
	}
	slogctx.Info(ctx, "Profile session cleared", "namespace", namespace)

	return nil
}
