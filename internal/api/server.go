// Package api serves the dashboard JSON API and the frontend bundle.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/observability"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// Dashboard is the aggregation service behind the API.
// *dashboard.Service satisfies it.
type Dashboard interface {
	ListClusters(ctx context.Context) ([]model.ClusterInfo, string, error)
	GetNodesWithPods(ctx context.Context, cluster string) ([]model.NodeDetail, error)
	GetClusterSummary(ctx context.Context, cluster string) (model.ClusterSummary, error)
}

// Options configures the API server.
type Options struct {
	// Addr is host:port to listen on. Port 0 picks a free port.
	Addr string
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// StaticDir holds the built frontend. Ignored when it does not exist.
	StaticDir string
}

// Server is the dashboard HTTP API.
type Server struct {
	dashboard  Dashboard
	metrics    *observability.Metrics
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the router. metrics may be nil.
func NewServer(opts Options, dashboard Dashboard, metrics *observability.Metrics) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{dashboard: dashboard, metrics: metrics}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(), requestMetrics(metrics))

	corsCfg := corsConfig(opts.CORSOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("api: cors: %w", err)
	}
	router.Use(cors.New(corsCfg))

	api := router.Group("/api")
	api.GET("/clusters", s.listClusters)
	api.GET("/nodes", s.nodes)
	api.GET("/cluster-summary", s.summary)
	api.GET("/clusters/:name/nodes", s.nodes)
	api.GET("/clusters/:name/summary", s.summary)

	s.mountFrontend(router, opts.StaticDir)

	s.router = router
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           gzhttp.GzipHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// A literal "*" cannot be combined with credentials, so any origin is
	// echoed back instead.
	for _, o := range origins {
		if o == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg
}

// mountFrontend serves dir as the SPA root. Unknown non-API paths get
// index.html so client-side routes survive a reload.
func (s *Server) mountFrontend(router *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); dir == "" || err != nil {
		router.NoRoute(notFound)
		return
	}

	router.Use(static.Serve("/", static.LocalFile(dir, false)))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			notFound(c)
			return
		}
		c.File(index)
	})
	slog.Info("serving frontend", "dir", dir)
}

// Handler returns the root handler, compression included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("api server listen: %w", err)
	}
	s.httpServer.Addr = ln.Addr().String()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("api server exited", "error", err)
		}
	}()
	slog.Info("api server listening", "addr", s.httpServer.Addr)
	return nil
}

// Addr returns the listen address; only meaningful after Start.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
