// Package admin serves the operational endpoints (health, metrics, pprof) on
// their own port, away from the public API.
package admin

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds admin router settings
type Config struct {
	// EnablePprof mounts /debug/pprof/*
	EnablePprof bool
	// Ready reports an error while the service cannot take traffic
	Ready func() error
}

// Router is the admin HTTP handler
type Router struct {
	router  *chi.Mux
	config  Config
	started time.Time
}

// NewRouter builds the admin router
func NewRouter(config Config) *Router {
	r := &Router{
		router:  chi.NewRouter(),
		config:  config,
		started: time.Now(),
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

func (r *Router) setupMiddleware() {
	r.router.Use(middleware.Recoverer)
	r.router.Use(middleware.NoCache)
}

func (r *Router) setupRoutes() {
	r.router.Get("/healthz", r.handleHealth)
	r.router.Handle("/metrics", promhttp.Handler())

	if r.config.EnablePprof {
		r.router.Route("/debug/pprof", func(pr chi.Router) {
			pr.Get("/", pprof.Index)
			pr.Get("/cmdline", pprof.Cmdline)
			pr.Get("/profile", pprof.Profile)
			pr.Post("/symbol", pprof.Symbol)
			pr.Get("/symbol", pprof.Symbol)
			pr.Get("/trace", pprof.Trace)
			pr.Get("/{profile}", func(w http.ResponseWriter, req *http.Request) {
				pprof.Handler(chi.URLParam(req, "profile")).ServeHTTP(w, req)
			})
		})
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Error  string `json:"error,omitempty"`
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{Status: "ok", Uptime: time.Since(r.started).Round(time.Second).String()}
	status := http.StatusOK
	if r.config.Ready != nil {
		if err := r.config.Ready(); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
