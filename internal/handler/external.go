package handler

import (
	"net/http"

	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// ExternalHandler handles outbound fetch proxy endpoints
type ExternalHandler struct {
	externalService *service.ExternalService
}

// NewExternalHandler creates a new external handler
func NewExternalHandler(externalService *service.ExternalService) *ExternalHandler {
	return &ExternalHandler{
		externalService: externalService,
	}
}

// FetchMultipleRequest represents the batch fetch request body
type FetchMultipleRequest struct {
	URLs []string `json:"urls"`
}

// Fetch handles GET /v1/external/fetch?url=...
func (h *ExternalHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		WriteError(w, model.NewBadRequestError("url query parameter is required"))
		return
	}

	result, err := h.externalService.Fetch(r.Context(), claims.UserID, rawURL)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// FetchMultiple handles POST /v1/external/fetch-multiple
func (h *ExternalHandler) FetchMultiple(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req FetchMultipleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	batch, err := h.externalService.FetchMultiple(r.Context(), claims.UserID, req.URLs)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, batch, nil)
}

// GitHubUser handles GET /v1/external/github/user/{username}
func (h *ExternalHandler) GitHubUser(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	profile, err := h.externalService.GitHubUser(r.Context(), r.PathValue("username"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, profile, nil)
}
