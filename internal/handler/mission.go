package handler

import (
	"net/http"
	"strconv"

	"github.com/guildhall/arena/internal/middleware"
	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// MissionHandler handles mission catalog and progression endpoints
type MissionHandler struct {
	missionService *service.MissionService
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(missionService *service.MissionService) *MissionHandler {
	return &MissionHandler{
		missionService: missionService,
	}
}

// CompleteRequest represents the mission completion request body
type CompleteRequest struct {
	Score float64 `json:"score"`
}

// Catalog handles GET /v1/missions
func (h *MissionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog := h.missionService.Catalog()
	WriteCollection(w, http.StatusOK, catalog, nil, map[string]string{
		"self": "/v1/missions",
	})
}

// Start handles POST /v1/users/{userId}/missions/{missionId}/start
func (h *MissionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	missionID, ok := parseMissionID(w, r)
	if !ok {
		return
	}

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	// Members start their own missions; admins may start for anyone
	if claims.UserID != userID && claims.Role != string(model.UserRoleAdmin) {
		WriteError(w, model.NewForbiddenError("cannot start missions for another member"))
		return
	}

	progress, err := h.missionService.Start(r.Context(), userID, missionID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, progress, nil)
}

// Complete handles POST /v1/users/{userId}/missions/{missionId}/complete
func (h *MissionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	missionID, ok := parseMissionID(w, r)
	if !ok {
		return
	}

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req CompleteRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.missionService.Complete(r.Context(), claims, userID, missionID, req.Score)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// Progress handles GET /v1/users/{userId}/missions
func (h *MissionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if requireClaims(w, r) == nil {
		return
	}

	records, err := h.missionService.Progress(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, records, nil, nil)
}

// parseMissionID reads the mission ID path segment
func parseMissionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	missionID, err := strconv.Atoi(r.PathValue("missionId"))
	if err != nil {
		WriteError(w, model.NewBadRequestError("invalid mission ID"))
		return 0, false
	}
	return missionID, true
}

// requireClaims extracts token claims, writing a 401 when absent
func requireClaims(w http.ResponseWriter, r *http.Request) *model.TokenClaims {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return nil
	}
	return &model.TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Username:  claims.Username,
		Role:      claims.Role,
		GuildRank: claims.GuildRank,
	}
}
