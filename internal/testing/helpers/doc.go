// Package helpers provides test utility functions for the Arena API.
//
// The helpers package contains common test utilities for assertions,
// pointer creation, and test data manipulation.
//
// # Pointer Helpers
//
// Create pointers to literal values:
//
//	name := helpers.StringPtr("test")
//	count := helpers.IntPtr(42)
//	flag := helpers.BoolPtr(true)
//
// # JWT Helpers
//
// Generate test JWT tokens:
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	token := jwtHelper.GenerateToken(user)
//
// # Request Builders
//
// Build authenticated HTTP requests:
//
//	req := helpers.NewRequest(t, "GET", "/v1/auth/me").
//	    WithAuth(jwtHelper, user).
//	    Build()
//
// # Response Assertions
//
// Validate responses and Problem Details errors:
//
//	helpers.AssertStatus(t, resp, http.StatusOK)
//	helpers.AssertValidationError(t, resp, "email")
package helpers
