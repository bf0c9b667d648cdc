//go:build e2e

package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_LiveEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	status := ts.getJSON(t, "/live", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

// TestE2E_ReadyEndpoint verifies readiness when the database is reachable.
func TestE2E_ReadyEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	status := ts.getJSON(t, "/ready", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestE2E_HealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	status := ts.getJSON(t, "/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "remote", body["backend"])
	assert.NotEmpty(t, body["version"])

	components, ok := body["components"].(map[string]any)
	require.True(t, ok, "expected components object")

	db, ok := components["database"].(map[string]any)
	require.True(t, ok, "expected database component")
	assert.Equal(t, "ok", db["status"])
}

func TestE2E_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	status := ts.getJSON(t, "/api/nowhere", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", body["error"])
}
