package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Server serves the CRM API.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New wires the API routes onto addr. db backs the readiness check and may be nil.
func New(addr string, logger *slog.Logger, db *pgxpool.Pool, deps Deps) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           buildRouter(logger, db, deps),
			ReadHeaderTimeout: 5 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then drains in-flight requests for at most
// grace. A listener failure is returned without waiting for ctx.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	failed := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// readyHandler reports 503 until the database answers within a second.
func readyHandler(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "up"
		if db == nil {
			state = "not configured"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			err := db.Ping(ctx)
			cancel()
			if err != nil {
				state = "down"
			}
		}
		if state != "up" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": state})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": state})
	}
}
