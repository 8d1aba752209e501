package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/flowi/backend/internal/infrastructure/scheduler"
	"github.com/flowi/backend/internal/interfaces/http/dto"
)

// SweepRunner runs the overdue sweep and quotation expiry on demand
type SweepRunner interface {
	RunNow(ctx context.Context) (*scheduler.RunResult, error)
}

// SweepHandler lets operators trigger the periodic maintenance by hand
type SweepHandler struct {
	BaseHandler
	runner SweepRunner
}

// NewSweepHandler creates a new SweepHandler
func NewSweepHandler(runner SweepRunner) *SweepHandler {
	return &SweepHandler{runner: runner}
}

// Run executes one sweep synchronously. A sweep already in progress,
// scheduled or manual, answers 409.
// POST /sweeps
func (h *SweepHandler) Run(c *gin.Context) {
	result, err := h.runner.RunNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrSweepInProgress) {
		h.Error(c, dto.ErrCodeSweepInProgress, "A sweep is already running")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
