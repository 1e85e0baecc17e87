package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontohub/pontohub/internal/config"
	"github.com/pontohub/pontohub/internal/store"
	"github.com/pontohub/pontohub/pkg/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

func newBody(s string) io.Reader {
	return strings.NewReader(s)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 0
	// Keep background pollers quiet in tests
	cfg.Schedules.Enabled = false
	cfg.Schedules.RemoteSync = false
	return cfg
}

// TestServer_New tests creating a new server instance
func TestServer_New(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	cfg := testConfig()
	srv := New(cfg, testStore)
	require.NotNil(t, srv)
	assert.Equal(t, cfg, srv.cfg)
	assert.NotNil(t, srv.router)
	assert.NotNil(t, srv.buffer)
	assert.NotNil(t, srv.reconciler)
	assert.NotNil(t, srv.tracker)
	assert.NotNil(t, srv.scheduler)
}

// TestServer_DebugMode tests gin mode selection
func TestServer_DebugMode(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	cfg := testConfig()
	cfg.Server.Debug = true
	srv := New(cfg, testStore)
	require.NotNil(t, srv)
	assert.Equal(t, gin.DebugMode, gin.Mode())

	gin.SetMode(gin.TestMode)
}

// TestServer_HealthRoute tests that routes are wired at construction
func TestServer_HealthRoute(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	srv := New(testConfig(), testStore)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

// TestServer_ReportCatalogRoute tests an API route end to end through
// the assembled router
func TestServer_ReportCatalogRoute(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	srv := New(testConfig(), testStore)

	req := httptest.NewRequest("GET", "/api/v1/reports", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var response struct {
		Reports []struct {
			ID int `json:"id"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Reports, 11)
}

// TestServer_ScheduleRoutes tests schedule CRUD through the assembled
// router backed by the real store
func TestServer_ScheduleRoutes(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	srv := New(testConfig(), testStore)

	body := `{
		"name": "daily faltas",
		"time": "08:00",
		"frequency": "daily",
		"dateMode": "current_month",
		"reports": [5]
	}`
	req := httptest.NewRequest("POST", "/api/v1/schedules", newBody(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, 201, w.Code, w.Body.String())

	req = httptest.NewRequest("GET", "/api/v1/schedules", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	var response struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
}

// TestServer_StartStop tests the server lifecycle
func TestServer_StartStop(t *testing.T) {
	testStore, cleanup := store.SetupTestDB(t)
	defer cleanup()

	srv := New(testConfig(), testStore)

	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())
}
