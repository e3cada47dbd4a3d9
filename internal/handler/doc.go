// Package handler provides HTTP request handlers for the Arena API.
//
// The handler package contains all HTTP endpoint implementations organized by domain.
// Each handler struct encapsulates the dependencies needed to serve requests for a
// specific feature area (authentication, users, missions, analytics, external).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts the services it depends on
//   - Methods handle specific HTTP endpoints registered on the ServeMux
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses via MapServiceError
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: single resource with optional HATEOAS links
//   - WriteCollection: list of resources with skip/limit pagination
//   - WriteJSON: raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Most handlers require authentication via JWT tokens. The auth middleware
// validates the token and handlers read claims with requireClaims, which
// writes a 401 when no claims are present.
//
// # Example Usage
//
//	handler := NewMissionHandler(missionService)
//	mux.Handle("GET /v1/missions", authed(http.HandlerFunc(handler.Catalog)))
//	mux.Handle("POST /v1/users/{userId}/missions/{missionId}/start", authed(http.HandlerFunc(handler.Start)))
package handler
