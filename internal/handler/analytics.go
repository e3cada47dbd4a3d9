package handler

import (
	"net/http"

	"github.com/guildhall/arena/internal/service"
)

// AnalyticsHandler handles guild statistics endpoints
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// UserStats handles GET /v1/analytics/users
func (h *AnalyticsHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	stats, err := h.analyticsService.UserStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "user statistics"))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// MissionStats handles GET /v1/analytics/missions
func (h *AnalyticsHandler) MissionStats(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	stats, err := h.analyticsService.MissionStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "mission statistics"))
		return
	}

	WriteCollection(w, http.StatusOK, stats, nil, nil)
}

// UserPerformance handles GET /v1/analytics/users/{userId}/performance
func (h *AnalyticsHandler) UserPerformance(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	performance, err := h.analyticsService.UserPerformance(r.Context(), r.PathValue("userId"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, performance, nil)
}

// Leaderboard handles GET /v1/analytics/leaderboard?limit=N
func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	limit := queryInt(r, "limit", 0)

	entries, err := h.analyticsService.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "leaderboard"))
		return
	}

	WriteCollection(w, http.StatusOK, entries, nil, nil)
}

// APIUsage handles GET /v1/analytics/api-usage
func (h *AnalyticsHandler) APIUsage(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	stats, err := h.analyticsService.APIUsage(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "api usage"))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}
