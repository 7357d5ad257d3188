// Package ui is the public HTTP API: upload a spreadsheet, run a test, and
// download the stored result workbooks.
package ui

import (
	"net/http"

	"hypotest/internal"
	"hypotest/internal/hypothesis"
	"hypotest/internal/results"

	"github.com/gin-gonic/gin"
)

// Config holds HTTP API settings
type Config struct {
	AllowedOrigins      []string
	MaxUploadBytes      int64
	UploadRatePerSecond float64
	UploadBurst         int
	Logger              *internal.Logger
}

// DefaultConfig matches the configuration defaults
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes:      50 * 1024 * 1024,
		UploadRatePerSecond: 5,
		UploadBurst:         10,
	}
}

// Server represents the web server for the hypothesis test API
type Server struct {
	router  *gin.Engine
	catalog *hypothesis.Catalog
	store   *results.Store
	config  Config
	limiter *clientLimiter
	logger  *internal.Logger
}

// NewServer creates a new web server instance with its routes installed
func NewServer(config Config, catalog *hypothesis.Catalog, store *results.Store) *Server {
	defaults := DefaultConfig()
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if config.UploadRatePerSecond <= 0 {
		config.UploadRatePerSecond = defaults.UploadRatePerSecond
	}
	if config.UploadBurst <= 0 {
		config.UploadBurst = defaults.UploadBurst
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:  gin.Default(),
		catalog: catalog,
		store:   store,
		config:  config,
		limiter: newClientLimiter(config.UploadRatePerSecond, config.UploadBurst),
		logger:  logger,
	}
	s.router.MaxMultipartMemory = 8 << 20

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	stat := s.router.Group("/stat")
	stat.GET("/tests", s.handleListTests)
	stat.POST("/:test/upload", s.rateLimit(), s.handleUpload)
	stat.GET("/download/:task_id", s.handleDownload)
	stat.POST("/download_zip", s.rateLimit(), s.handleDownloadZip)
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}
