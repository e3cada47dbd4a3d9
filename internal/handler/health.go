package handler

import (
	"net/http"

	"github.com/guildhall/arena/internal/model"
)

// Version is the API version reported by the welcome endpoint
const Version = "0.1.0"

// HealthHandler serves the welcome and liveness endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Welcome handles GET /
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes every unmatched path here
	if r.URL.Path != "/" {
		WriteError(w, model.NewNotFoundError("resource"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "The Guild awaits your journey",
		"version":  Version,
		"missions": model.MissionCount(),
	})
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "The Guild is alive",
		"status":  "operational",
	})
}
