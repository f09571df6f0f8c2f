// main_test.go
package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ctf-catalog/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogJSON = `{
  "collections": [
    {
      "id": 1, "title": "Harbour Hunt", "status": "active", "totalChallenges": 2,
      "githubUrl": "https://github.com/example/harbour",
      "challenges": {
        "easy": [{"name": "lighthouse", "answer": "BEAM"}],
        "medium": [],
        "hard": [{"name": "wreck"}]
      }
    }
  ]
}`

// writeCatalog creates a catalog file in a temporary directory.
func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(catalogPath string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:          "0",
			Mode:          gin.TestMode,
			SessionSecret: "test-secret",
			StaticDir:     "./static",
		},
		Catalog: config.CatalogConfig{Path: catalogPath},
		Page: config.PageConfig{
			VerifyDelay:     10 * time.Millisecond,
			FeedbackTimeout: time.Second,
		},
		Storage:   config.StorageConfig{Type: "memory"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newTestServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := newServer(context.Background(), testConfig(writeCatalog(t, testCatalogJSON)))
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// TestHealthEndpoint tests the /health endpoint.
// Given: the full router.
// When: A GET request is made to /health.
// Then: It should return HTTP 200 and the healthy status.
func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t).router()

	resp := get(router, "/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, resp.Body.String())
	assert.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
}

// TestIndexOpensPage checks the page is rendered and registered for the new browser.
func TestIndexOpensPage(t *testing.T) {
	s := newTestServer(t)
	router := s.router()

	resp := get(router, "/")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Harbour Hunt")
	assert.Contains(t, resp.Body.String(), "data-page-id=")
	assert.NotEmpty(t, resp.Result().Cookies(), "browser identity cookie is issued")
	assert.Equal(t, 1, s.pages.Len())
}

// TestMetricsEndpoint checks requests are counted by route.
func TestMetricsEndpoint(t *testing.T) {
	router := newTestServer(t).router()

	get(router, "/health")
	resp := get(router, "/metrics")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "http_requests_total")
	assert.Contains(t, resp.Body.String(), `endpoint="/health"`)
}

// TestAdminRoutesRequireLogin checks the admin group is guarded.
func TestAdminRoutesRequireLogin(t *testing.T) {
	router := newTestServer(t).router()

	resp := get(router, "/admin/status")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

// TestRenderCommand checks the static page holds the rendered catalog.
func TestRenderCommand(t *testing.T) {
	path := writeCatalog(t, testCatalogJSON)
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"render", "--catalog", path})
	require.NoError(t, cmd.Execute())

	html := out.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Harbour Hunt")
	assert.Contains(t, html, `data-count="2"`)
}

// TestRenderCommand_MissingCatalog checks intake failure renders the error panel.
func TestRenderCommand_MissingCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderPage(&out, filepath.Join(t.TempDir(), "missing.json"), ""))
	assert.Contains(t, out.String(), "Failed to load CTF data")
}

// TestValidateCommand checks stats and missing answers are reported.
func TestValidateCommand(t *testing.T) {
	path := writeCatalog(t, testCatalogJSON)
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "1 collections, 2 challenges")
	assert.Contains(t, out.String(), "#1 Harbour Hunt: 1 challenge(s) without an answer")
}

func TestValidateCommand_BadFile(t *testing.T) {
	path := writeCatalog(t, "{not json")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", path})
	assert.Error(t, cmd.Execute())
}
