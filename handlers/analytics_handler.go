package handlers

import (
	"net/http"

	"nonprofit-platform/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboard - Admin: aggregated site statistics
func (h *AnalyticsHandler) GetDashboard(e *core.RequestEvent) error {
	stats, err := h.analyticsService.Dashboard(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to compute dashboard", err)
	}
	return e.JSON(http.StatusOK, stats)
}
