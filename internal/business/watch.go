package business

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/serviceerr"
)

// WatchMain refreshes the profile every watch interval and prints the events
// until ctx is cancelled.
func WatchMain(ctx context.Context, cfg *config.Config) error {
	return watch(ctx, cfg, os.Stdout)
}

func watch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("%w: %s must be positive", serviceerr.ErrInvalidWatchInterval, cfg.Watch.Interval)
	}

	sess, err := initSession(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise the profile session: %w", err)
	}
	defer sess.close()

	printer := NewEventPrinter(out)
	if err := printer.Attach(sess.repo); err != nil {
		return err
	}

	slogctx.Info(ctx, "Starting profile watch", "interval", cfg.Watch.Interval)
	c := time.Tick(cfg.Watch.Interval)
	for {
		slogctx.Debug(ctx, "Triggering profile refresh")
		sess.repo.RefreshProfile()

		select {
		case <-c:
			if err := printer.Err(); err != nil {
				return err
			}
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
