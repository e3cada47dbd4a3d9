package handler

import (
	"errors"

	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrUserInactive):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrMissionNotFound):
		return model.NewNotFoundError("mission")
	case errors.Is(err, service.ErrMissionNotStarted):
		return model.NewNotFoundError("mission progress")
	case errors.Is(err, service.ErrGitHubUserNotFound):
		return model.NewNotFoundError("github user")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrUsernameAlreadyTaken),
		errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrMissionAlreadyStarted),
		errors.Is(err, service.ErrMissionAlreadyCompleted):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrUsernameTooShort),
		errors.Is(err, service.ErrUsernameTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "username", Message: err.Error()}})

	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidRole):
		return model.NewValidationError([]model.FieldError{{Field: "role", Message: err.Error()}})

	// ===== Fetch Input Errors → 400 =====
	case errors.Is(err, service.ErrInvalidFetchURL),
		errors.Is(err, service.ErrTooManyURLs):
		return model.NewBadRequestError(err.Error())

	// ===== Upstream Errors → 408 / 502 =====
	case errors.Is(err, service.ErrFetchTimeout):
		return model.NewTimeoutError(err.Error())
	case errors.Is(err, service.ErrUpstreamUnreachable):
		return model.NewBadGatewayError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
