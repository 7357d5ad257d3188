package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hypotest/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewAdminServer(t *testing.T) {
	tests := []struct {
		name       string
		pprof      bool
		pprofCode  int
		resultsDir string
		healthCode int
	}{
		{"pprof disabled keeps health and metrics", false, http.StatusNotFound, t.TempDir(), http.StatusOK},
		{"pprof enabled", true, http.StatusOK, t.TempDir(), http.StatusOK},
		{"missing result directory is unhealthy", false, http.StatusNotFound, "/nonexistent/results", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Profiling: config.ProfilingConfig{Port: "6060", Enabled: tt.pprof},
				Results:   config.ResultsConfig{Dir: tt.resultsDir},
			}
			srv := newAdminServer(cfg)
			assert.Equal(t, ":6060", srv.Addr)

			get := func(path string) int {
				rec := httptest.NewRecorder()
				srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				return rec.Code
			}
			assert.Equal(t, tt.healthCode, get("/healthz"))
			assert.Equal(t, http.StatusOK, get("/metrics"))
			assert.Equal(t, tt.pprofCode, get("/debug/pprof/"))
		})
	}
}
