package business

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/serviceerr"
)

func TestWatch_RefreshesUntilCancelled(t *testing.T) {
	server := startAccountServer(t)
	out := &syncBuffer{}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, testConfig(server.URL), out)
	}()

	// without a token the first refresh fails, later ones fail as well
	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "event: ProfileRefreshResult") >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_InvalidStore(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Store.Type = config.StoreType("etcd")

	err := watch(t.Context(), cfg, &syncBuffer{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialise the profile session")
}

func TestWatch_InvalidInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		t.Run(interval.String(), func(t *testing.T) {
			cfg := testConfig("http://localhost")
			cfg.Watch.Interval = interval

			err := watch(t.Context(), cfg, &syncBuffer{})
			assert.ErrorIs(t, err, serviceerr.ErrInvalidWatchInterval)
		})
	}
}
