package cache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
}

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get returns the cached value for key, or ErrCacheMiss
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return val, nil
}

// Set stores value under key with the given TTL
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a single key
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// DeletePattern removes all keys matching a glob pattern using SCAN
// to avoid blocking the server on large keyspaces.
func (r *Redis) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			n, err := r.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, fmt.Errorf("cache delete pattern: %w", err)
			}
			deleted += n
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("cache scan: %w", err)
	}
	if len(batch) > 0 {
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return deleted, fmt.Errorf("cache delete pattern: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

// Stats returns cache statistics from Redis INFO and DBSIZE
func (r *Redis) Stats(ctx context.Context) (*Stats, error) {
	info, err := r.client.Info(ctx).Result()
	if err != nil {
		return &Stats{
			Status:  "error",
			Message: err.Error(),
		}, nil
	}

	fields := parseInfo(info)

	keys, err := r.client.DBSize(ctx).Result()
	if err != nil {
		keys = 0
	}

	hits := parseInt64(fields["keyspace_hits"])
	misses := parseInt64(fields["keyspace_misses"])

	return &Stats{
		Status:           "connected",
		UsedMemory:       fields["used_memory_human"],
		TotalKeys:        keys,
		ConnectedClients: parseInt64(fields["connected_clients"]),
		UptimeSeconds:    parseInt64(fields["uptime_in_seconds"]),
		HitRate:          hitRate(hits, misses),
	}, nil
}

// Close closes the underlying Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

// parseInfo parses the key:value lines of a Redis INFO response
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[key] = value
	}

	return fields
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// hitRate returns the keyspace hit percentage rounded to 2 decimal places
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}
