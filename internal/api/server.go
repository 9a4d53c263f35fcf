// Package api serves computed statistics as read-only JSON over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/logger"
	"github.com/sadopc/tempo/internal/stats"
)

// Source supplies the collections snapshot for each request.
type Source interface {
	Snapshot() (domain.Collections, error)
}

type Options struct {
	Location    *time.Location
	DailyGoal   int // minutes; the default scale reference
	Granularity stats.Granularity
	Domain      stats.Domain
	Now         func() time.Time
	Memo        *stats.Memo
}

type Server struct {
	src   Source
	opts  Options
	memo  *stats.Memo
	log   zerolog.Logger
	start time.Time
}

func New(src Source, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Granularity == "" {
		opts.Granularity = stats.Week
	}
	if opts.Domain == "" {
		opts.Domain = stats.All
	}
	memo := opts.Memo
	if memo == nil {
		memo = stats.NewMemo(0)
	}
	return &Server{
		src:   src,
		opts:  opts,
		memo:  memo,
		log:   logger.Component("api"),
		start: time.Now(),
	}
}

func (s *Server) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/series", s.series)
	api.GET("/rolling", s.rolling)
	api.GET("/period", s.period)
	api.GET("/scale", s.scale)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
