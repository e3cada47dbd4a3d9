package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUsernameAlreadyTaken = errors.New("username already registered")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong      = errors.New("password must be at most 128 characters")
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTooShort     = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong      = errors.New("username must be at most 50 characters")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidRole          = errors.New("role must be member or admin")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Authorization Errors =====
var (
	ErrNotAuthorized = errors.New("not authorized to perform this action")
)

// ===== Mission Errors =====
var (
	ErrMissionNotFound         = errors.New("mission not found")
	ErrMissionAlreadyStarted   = errors.New("mission already started")
	ErrMissionAlreadyCompleted = errors.New("mission already completed")
	ErrMissionNotStarted       = errors.New("mission not started")
)

// ===== External Fetch Errors =====
var (
	ErrFetchTimeout        = errors.New("upstream request timed out")
	ErrUpstreamUnreachable = errors.New("upstream service unreachable")
	ErrInvalidFetchURL     = errors.New("invalid fetch URL")
	ErrTooManyURLs         = errors.New("too many URLs in batch request")
	ErrGitHubUserNotFound  = errors.New("github user not found")
)
