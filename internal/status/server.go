// Package status serves read-only audit progress over HTTP.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/store"
)

type Response struct {
	AuditID string `json:"auditId"`
	runstate.Snapshot
	GlobalScore *int   `json:"globalScore,omitempty"`
	Summary     string `json:"summary,omitempty"`
	// Live is false when the answer comes from the persisted audit, which is
	// the case for any finished run the store already holds.
	Live bool `json:"live"`
}

type Server struct {
	router *gin.Engine
	states runstate.Registry
	store  store.Store
}

func NewServer(states runstate.Registry, st store.Store) *Server {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("status handler panic", "panic", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	s := &Server{router: r, states: states, store: st}
	s.SetupRoutes()
	return s
}

func (s *Server) SetupRoutes() {
	s.router.GET("/healthz", s.healthHandler)
	s.router.GET("/audits/:id", s.auditHandler)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) auditHandler(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	snap, err := s.states.Get(ctx, id)
	live := err == nil
	if live && !snap.Status.Terminal() {
		c.JSON(http.StatusOK, Response{AuditID: id, Snapshot: snap, Live: true})
		return
	}
	if err != nil && !errors.Is(err, runstate.ErrNotFound) {
		slog.Warn("run state lookup failed", "audit_id", id, "error", err)
	}

	// A finished run keeps its logs in the run state until expiry, but the
	// score only exists in the store.
	a, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if live {
			c.JSON(http.StatusOK, Response{AuditID: id, Snapshot: snap, Live: true})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "audit not found"})
		return
	}
	if err != nil {
		slog.Error("audit lookup failed", "audit_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit lookup failed"})
		return
	}
	logs := []string{}
	if live && snap.Logs != nil {
		logs = snap.Logs
	}
	c.JSON(http.StatusOK, Response{
		AuditID: id,
		Snapshot: runstate.Snapshot{
			Status:       a.Status,
			PagesScanned: a.PagesScanned,
			TotalPages:   a.TotalPages,
			IssuesFound:  a.IssuesFound,
			Logs:         logs,
		},
		GlobalScore: a.GlobalScore,
		Summary:     a.Summary,
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}
