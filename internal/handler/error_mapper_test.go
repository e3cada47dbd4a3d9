package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/guildhall/arena/internal/service"
)

func TestMapServiceError_StatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"nil error", nil, 0},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid refresh token", service.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"expired refresh token", service.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{"revoked refresh token", service.ErrRefreshTokenRevoked, http.StatusUnauthorized},
		{"not authorized", service.ErrNotAuthorized, http.StatusForbidden},
		{"inactive user", service.ErrUserInactive, http.StatusForbidden},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"mission not found", service.ErrMissionNotFound, http.StatusNotFound},
		{"mission not started", service.ErrMissionNotStarted, http.StatusNotFound},
		{"github user not found", service.ErrGitHubUserNotFound, http.StatusNotFound},
		{"username taken", service.ErrUsernameAlreadyTaken, http.StatusConflict},
		{"email exists", service.ErrEmailAlreadyExists, http.StatusConflict},
		{"mission already started", service.ErrMissionAlreadyStarted, http.StatusConflict},
		{"mission already completed", service.ErrMissionAlreadyCompleted, http.StatusConflict},
		{"username required", service.ErrUsernameRequired, http.StatusUnprocessableEntity},
		{"password too short", service.ErrPasswordTooShort, http.StatusUnprocessableEntity},
		{"invalid email", service.ErrInvalidEmail, http.StatusUnprocessableEntity},
		{"invalid fetch url", service.ErrInvalidFetchURL, http.StatusBadRequest},
		{"too many urls", service.ErrTooManyURLs, http.StatusBadRequest},
		{"fetch timeout", service.ErrFetchTimeout, http.StatusRequestTimeout},
		{"upstream unreachable", service.ErrUpstreamUnreachable, http.StatusBadGateway},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := MapServiceError(tt.err)
			if tt.err == nil {
				if pd != nil {
					t.Errorf("expected nil for nil error, got %+v", pd)
				}
				return
			}
			if pd.Status != tt.wantStatus {
				t.Errorf("MapServiceError(%v) status = %d, want %d", tt.err, pd.Status, tt.wantStatus)
			}
		})
	}
}

func TestMapServiceError_WrappedErrors(t *testing.T) {
	t.Parallel()

	// Wrapped sentinels must still map correctly
	wrapped := errors.Join(errors.New("context"), service.ErrUpstreamUnreachable)
	pd := MapServiceError(wrapped)
	if pd.Status != http.StatusBadGateway {
		t.Errorf("wrapped upstream error status = %d, want %d", pd.Status, http.StatusBadGateway)
	}
}

func TestMapServiceError_InternalErrorHidesDetail(t *testing.T) {
	t.Parallel()

	pd := MapServiceError(errors.New("connection string with credentials"))
	if pd.Detail == "connection string with credentials" {
		t.Error("internal error detail must not leak underlying error text")
	}
}

func TestMapServiceErrorWithContext_AnnotatesInternalErrors(t *testing.T) {
	t.Parallel()

	pd := MapServiceErrorWithContext(errors.New("boom"), "list users")
	if pd.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", pd.Status)
	}
	if pd.Detail != "list users: an unexpected error occurred" {
		t.Errorf("unexpected detail %q", pd.Detail)
	}

	// Mapped errors keep their own detail
	pd = MapServiceErrorWithContext(service.ErrUserNotFound, "list users")
	if pd.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", pd.Status)
	}
}
