//go:build e2e

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/solarsite/internal/app"
	"github.com/heartmarshall/solarsite/internal/auth"
	"github.com/heartmarshall/solarsite/internal/config"
)

const testKey = "e2e-signing-key-at-least-32-chars!!"

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// testServer wraps the full remote-mode stack for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	App    *app.App
	cfg    *config.Config
}

func remoteConfig(t *testing.T, pool *pgxpool.Pool, statePath string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Remote: config.RemoteConfig{
			URL: pool.Config().ConnString(),
			Key: testKey,
		},
		Database: config.DatabaseConfig{MaxConns: 4, MinConns: 1},
		Auth: config.AuthConfig{
			TokenIssuer:   "solarsite-e2e",
			TokenTTL:      time.Hour,
			BcryptCost:    4,
			EventsChannel: "auth_events",
		},
		Session: config.SessionConfig{
			ProfileTimeout: 5 * time.Second,
			LocalStatePath: statePath,
		},
		Cache: config.CacheConfig{TTL: time.Minute},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,OPTIONS",
			AllowedHeaders: "Content-Type",
		},
	}
}

// newApp wires a remote-mode App against pool. Apps sharing statePath
// share the persisted session.
func newApp(t *testing.T, pool *pgxpool.Pool, statePath string) *app.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	a, err := app.New(context.Background(), remoteConfig(t, pool, statePath), logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	a := newApp(t, pool, filepath.Join(t.TempDir(), "state.json"))

	handler, stop := a.Handler()
	t.Cleanup(stop)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		App:    a,
		cfg:    a.Config,
	}
}

func (ts *testServer) getJSON(t *testing.T, path string, dest any) int {
	t.Helper()

	resp, err := ts.Client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func (ts *testServer) postJSON(t *testing.T, path string, body, dest any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := ts.Client.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

// seedAdmin creates an administrator with the given password and returns
// its email.
func seedAdmin(t *testing.T, pool *pgxpool.Pool, password string) string {
	t.Helper()

	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	_, email := testhelper.SeedAdmin(t, pool, hash)
	return email
}
