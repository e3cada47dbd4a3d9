// Package config manages application configuration for the Arena API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// A local .env file, if present, is merged into the environment by the
// server entrypoint before Load runs; variables already set in the
// environment always win.
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS, rate limits)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: JWT signing and validation settings
//   - RedisConfig: cache settings; an empty REDIS_ADDR disables caching
//   - ExternalConfig: outbound API call settings
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT              - HTTP server port (default: 8080)
//	DB_HOST / DB_PORT        - SurrealDB host and port
//	DB_NAMESPACE / DB_DATABASE
//	JWT_PRIVATE_KEY_PATH     - RSA private key for token signing
//	JWT_EXPIRATION_MINS      - Access token lifetime (default: 30)
//	JWT_REFRESH_DAYS         - Refresh token lifetime (default: 30)
//	REDIS_ADDR               - Redis address; empty disables the cache
//	EXTERNAL_FETCH_TIMEOUT   - Outbound fetch timeout (default: 10s)
//
// # Default Values
//
// Sensible defaults are provided for development:
//
//	func getEnv(key, defaultValue string) string {
//	    if value := os.Getenv(key); value != "" {
//	        return value
//	    }
//	    return defaultValue
//	}
package config
