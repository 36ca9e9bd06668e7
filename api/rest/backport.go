package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/contentbackport/cache"
	mw "github.com/kasuganosora/contentbackport/middleware"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/pipeline"
	"go.uber.org/zap"
)

// RunLogReader lists the audit rows of one run.
type RunLogReader interface {
	RunLogs(ctx context.Context, runID string) ([]model.MergeLog, error)
}

// BackportHandler exposes what the last backport run did.
// Routes should be protected by IPWhitelist.
type BackportHandler struct {
	cache  cache.Cache
	logs   RunLogReader
	logger *zap.Logger
}

// NewBackportHandler creates a BackportHandler. logs may be nil when no audit
// store is configured.
func NewBackportHandler(c cache.Cache, logs RunLogReader, logger *zap.Logger) *BackportHandler {
	return &BackportHandler{cache: c, logs: logs, logger: logger}
}

// Report handles GET /api/backport/report.
func (h *BackportHandler) Report(c *gin.Context) {
	s, err := pipeline.LastSummary(c.Request.Context(), h.cache)
	if err != nil {
		h.logger.Error("read last run", zap.Error(err))
		mw.Abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	if s == nil {
		mw.Abort(c, http.StatusNotFound, "no run recorded")
		return
	}
	c.JSON(http.StatusOK, s)
}

// Status handles GET /api/backport/status.
func (h *BackportHandler) Status(c *gin.Context) {
	running, err := pipeline.Running(c.Request.Context(), h.cache)
	if err != nil {
		h.logger.Error("read merge lock", zap.Error(err))
		mw.Abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": running})
}

// RunLogs handles GET /api/backport/runs/:id/logs.
func (h *BackportHandler) RunLogs(c *gin.Context) {
	if h.logs == nil {
		mw.Abort(c, http.StatusNotFound, "audit disabled")
		return
	}
	rows, err := h.logs.RunLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("read run logs", zap.String("run_id", c.Param("id")), zap.Error(err))
		mw.Abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": rows})
}
