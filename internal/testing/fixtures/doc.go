// Package fixtures provides test data factories for the Arena API.
//
// The fixtures package contains factory functions for creating test data
// with sensible defaults and optional customization.
//
// # Factory Pattern
//
// Create a factory with a database connection:
//
//	f := fixtures.New(testDB)
//
// # Creating Test Data
//
// Factory methods create domain entities:
//
//	user := f.CreateUser(t)                       // Default member
//	admin := f.CreateAdmin(t)                     // Admin user
//	veteran := f.CreateVeteran(t, 10)             // Member with 10 completed missions
//	progress := f.CreateProgress(t, user, 1)      // In-progress mission record
//	f.CreateCompletedProgress(t, user, 2, 87.5)   // Completed with score
//	f.CreateAPILog(t, user)                       // Usage analytics row
package fixtures
