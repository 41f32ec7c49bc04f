package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(probes map[string]Probe) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{App: config.AppConfig{Version: "1.2.3", Env: "production"}}
	engine := gin.New()
	NewController(cfg, probes).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		probes     map[string]Probe
		wantCode   int
		wantStatus string
	}{
		{"no probes", nil, http.StatusOK, "healthy"},
		{"database up", map[string]Probe{"database": ok}, http.StatusOK, "healthy"},
		{"database down", map[string]Probe{"database": down, "redis": ok}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newEngine(tt.probes).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Nil(t, body.System)
			assert.Len(t, body.Checks, len(tt.probes))
		})
	}
}

func TestReadiness(t *testing.T) {
	down := map[string]Probe{"database": func(context.Context) error { return errors.New("down") }}

	rec := httptest.NewRecorder()
	newEngine(down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database not available")

	rec = httptest.NewRecorder()
	newEngine(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
