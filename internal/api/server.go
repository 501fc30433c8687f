// Package api exposes the document service over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/instrux/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 5 << 20

type Options struct {
	// CORSOrigins lists the origins allowed to call the API, "*" for any.
	CORSOrigins []string
	// DisableMetrics removes the /metrics endpoint.
	DisableMetrics bool
}

type Server struct {
	svc    *service.DocumentService
	router *gin.Engine
}

func New(svc *service.DocumentService, opts Options) *Server {
	s := &Server{svc: svc, router: gin.New()}
	s.router.Use(gin.Recovery(), requestID(), accessLog(), cors(opts.CORSOrigins))
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	r := s.router
	if !opts.DisableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	api.GET("/health", s.health)

	instructions := api.Group("/instructions")
	instructions.GET("", s.listInstructions)
	instructions.POST("", s.createInstruction)
	instructions.GET("/:id", s.getInstruction)
	instructions.PUT("/:id", s.updateInstruction)
	instructions.DELETE("/:id", s.deleteInstruction)
	instructions.GET("/:id/revisions", s.listRevisions)

	revisions := api.Group("/revisions")
	revisions.GET("/:id", s.getRevision)
	revisions.POST("/diff", s.diffRevisions)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, waiting up to ten seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
