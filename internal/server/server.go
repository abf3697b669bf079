// Package server exposes the ensemble over HTTP: a JSON API, a server-sent
// event stream of store changes, a websocket for live calls and a small
// embedded web page.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/metrics"
)

//go:embed web
var webFS embed.FS

// Server serves the HTTP API for one ensemble.
type Server struct {
	svc     *ensemble.Service
	live    call.LiveBackend
	callCfg config.CallConfig
	metrics *metrics.Metrics
	log     zerolog.Logger
	base    context.Context
	router  *gin.Engine
}

// Opts holds parameters for creating a Server.
type Opts struct {
	Service *ensemble.Service
	Live    call.LiveBackend // optional; calls are refused without it
	Call    config.CallConfig
	Metrics *metrics.Metrics
	Logger  *zerolog.Logger
	// Base bounds turns started over HTTP. Turns outlive the request that
	// started them. Defaults to context.Background.
	Base context.Context
}

// New creates a Server and registers its routes.
func New(opts Opts) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("server: service is required")
	}
	s := &Server{
		svc:     opts.Service,
		live:    opts.Live,
		callCfg: opts.Call,
		metrics: opts.Metrics,
		log:     zerolog.Nop(),
		base:    opts.Base,
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.base == nil {
		s.base = context.Background()
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.accessLog())
	s.registerRoutes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// StartOpts holds listener settings.
type StartOpts struct {
	Port int
	Out  io.Writer
}

// Start serves on the given port. It blocks until ctx is cancelled, then
// shuts down gracefully and waits for in-flight turns.
func (s *Server) Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Ensemble running at http://localhost:%d\n", opts.Port)
	}
	s.log.Info().Int("port", opts.Port).Msg("http server listening")

	err := srv.ListenAndServe()
	s.svc.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
