package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/saree_store/internal/service"
	"go.uber.org/zap"
)

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*service.Analytics, error)
}

type AnalyticsHandler struct {
	analytics AnalyticsService
	timeout   time.Duration
	log       *zap.Logger
}

func NewAnalyticsHandler(analytics AnalyticsService, timeout time.Duration, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		timeout:   timeout,
		log:       log,
	}
}

func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	a, err := h.analytics.Dashboard(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}
