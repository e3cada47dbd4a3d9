// Package middleware provides HTTP middleware for the Arena API.
//
// The middleware package contains reusable middleware components for
// authentication, authorization, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation and user extraction
//   - AdminAuth: admin role enforcement, layered after Auth
//   - RateLimit: request rate limiting per user/IP
//   - Idempotency: idempotent request handling
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts user information:
//
//	protected := middleware.Chain(handler, middleware.Auth(authService))
//
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//
// # Rate Limiting
//
// Rate limiting protects against abuse:
//
//	limited := middleware.Chain(handler, middleware.RateLimit(limiter))
//
// Configurable limits per endpoint and user tier.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): returns authenticated user ID
//   - GetClaims(ctx): returns the validated JWT claims
//   - GetRequestID(ctx): returns unique request identifier
package middleware
