//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/dbtest/postgrestest"
	"github.com/openkcm/profile-session/internal/dbtest/valkeytest"
	"github.com/openkcm/profile-session/internal/profile"
)

type infraStat struct {
	Procdir string
	Cfg     config.Config

	closeFuncs []func(ctx context.Context)
}

// initInfra prepares a directory holding the config.yaml the process reads.
func initInfra(t *testing.T, name string) *infraStat {
	t.Helper()

	istat := &infraStat{Procdir: t.TempDir()}
	configFilePath := filepath.Join(istat.Procdir, "config.yaml")

	err := os.WriteFile(configFilePath, []byte(validConfig), fs.ModePerm)
	require.NoError(t, err, "failed to write config file")

	err = commoncfg.LoadConfig(&istat.Cfg, nil, istat.Procdir)
	require.NoError(t, err, "failed to load config")

	istat.Cfg.Store.Namespace = name
	t.Cleanup(func() {
		for _, fn := range istat.closeFuncs {
			fn(context.Background())
		}
	})

	return istat
}

func (istat *infraStat) PrepareAccountServer(t *testing.T) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/auth/signup":
			w.WriteHeader(http.StatusCreated)
		case "POST /api/v1/auth/login":
			_, _ = w.Write([]byte(`{"data": {"api_token": "token_123"}}`))
		case "GET /api/v1/user/me", "PATCH /api/v1/user/me":
			if r.Header.Get("Authorization") != "Bearer token_123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"data": {"name": "Jane", "profile": {"birthdate": "1990-01-01", "location": "Berlin"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	istat.Cfg.Remote.BaseURL = server.URL + "/api/v1/"
}

func (istat *infraStat) PrepareValKey(t *testing.T) {
	t.Helper()

	_, port, terminate := valkeytest.Start(t.Context())
	istat.closeFuncs = append(istat.closeFuncs, terminate)

	istat.Cfg.Store.Type = config.StoreTypeValKey
	istat.Cfg.ValKey.Host = commoncfg.SourceRef{Source: "embedded", Value: valkeytest.Address(port)}
}

func (istat *infraStat) PreparePostgres(t *testing.T) {
	t.Helper()

	_, port, terminate := postgrestest.Start(t.Context())
	istat.closeFuncs = append(istat.closeFuncs, terminate)

	istat.Cfg.Store.Type = config.StoreTypePostgres
	istat.Cfg.Database.Name = postgrestest.DBName
	istat.Cfg.Database.Port = port.Port()
	istat.Cfg.Database.SSLMode = postgrestest.DBSSLMode
	istat.Cfg.Database.Host = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBHost}
	istat.Cfg.Database.User = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBUser}
	istat.Cfg.Database.Password = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBPassword}
}

// WriteConfig stores the adjusted configuration for the process.
func (istat *infraStat) WriteConfig(t *testing.T) {
	t.Helper()

	b, err := yaml.Marshal(istat.Cfg)
	require.NoError(t, err, "failed to encode config")
	require.NoError(t, os.WriteFile(filepath.Join(istat.Procdir, "config.yaml"), b, fs.ModePerm))
}

// Run executes the binary with args and returns the events it printed.
func (istat *infraStat) Run(t *testing.T, args ...string) ([]string, error) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(t.Context(), filepath.Join(wd, binary), args...)
	cmd.Dir = istat.Procdir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	t.Logf("%s stderr: %s", strings.Join(args, " "), stderr.String())

	var events []string
	for doc := range strings.SplitSeq(stdout.String(), "---\n") {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		var ev struct {
			Event   string           `yaml:"event"`
			Profile *profile.Profile `yaml:"profile"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(doc), &ev), "decoding %q", doc)
		events = append(events, ev.Event)
	}

	return events, runErr
}
