// Package jobs implements background job processing for the Arena API.
//
// The jobs package contains scheduled tasks that run independently of
// HTTP request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - TokenCleanup: removes expired refresh tokens and prunes old
//     revoked tokens on an hourly schedule
//   - LeaderboardWarmer: periodically recomputes the default
//     leaderboard so the cached view stays warm
//
// # Lifecycle
//
// Jobs share a Start/Stop lifecycle:
//
//	cleanup := jobs.NewTokenCleanup(tokenRepo, time.Hour)
//	cleanup.Start()
//	defer cleanup.Stop()
//
// Start is idempotent and Stop blocks until the job goroutine exits.
//
// # Error Handling
//
// Jobs log errors but don't crash the application; a failed run is
// retried on the next tick.
package jobs
