package handler

import (
	"net/http"
	"strconv"

	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// UserHandler handles guild member management endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateUserRequest represents the user update request body
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// List handles GET /v1/users?skip=N&limit=N
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	users, total, err := h.userService.List(r.Context(), skip, limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list users"))
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	WriteCollection(w, http.StatusOK, responses, &PaginationInfo{
		Skip:  skip,
		Limit: limit,
		Total: total,
	}, map[string]string{
		"self": "/v1/users",
	})
}

// Get handles GET /v1/users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	user, err := h.userService.GetByID(r.Context(), r.PathValue("userId"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user), nil)
}

// Update handles PUT /v1/users/{userId}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req UpdateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.userService.Update(r.Context(), claims, r.PathValue("userId"), service.UpdateUserRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user), nil)
}

// Delete handles DELETE /v1/users/{userId}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	if err := h.userService.Delete(r.Context(), claims, r.PathValue("userId")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
