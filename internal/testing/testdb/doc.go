// Package testdb provides test database utilities for the Arena API.
//
// The testdb package manages test database connections with automatic
// setup, migration, and cleanup.
//
// # Test Database Setup
//
// Create a test database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    // Use tdb.DB for database operations
//	}
//
// # Migrations
//
// Migrations are automatically applied on setup. The loader looks for a
// migrations/ directory relative to the test, or under ARENA_ROOT.
//
// # Shared Databases
//
// Share one migrated database across subtests to cut setup cost:
//
//	shared := testdb.NewShared(t)
//	defer shared.Close()
//	tdb := shared.SetupSubtest(t)
package testdb
