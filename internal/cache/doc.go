// Package cache provides the Redis-backed read-through cache for the
// Arena API.
//
// The Cache interface stores opaque byte slices under string keys with a
// TTL. The analytics and external services serialize their responses to
// JSON before caching and invalidate with DeletePattern when underlying
// data changes.
//
// # Degraded Mode
//
// When no REDIS_ADDR is configured, the server wires a Noop cache. Every
// Get returns ErrCacheMiss, so callers compute results directly and the
// API keeps working without Redis.
//
// # Key Conventions
//
//	analytics:users          - user statistics
//	analytics:missions       - mission statistics
//	analytics:leaderboard:N  - leaderboard with limit N
//	external:github:USER     - proxied GitHub profile
package cache
