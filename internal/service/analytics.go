package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/guildhall/arena/internal/cache"
	"github.com/guildhall/arena/internal/model"
)

const (
	// Cache TTLs. Aggregates over the whole table are cheap to hold for
	// minutes; the leaderboard changes more often.
	statsCacheTTL       = 5 * time.Minute
	leaderboardCacheTTL = time.Minute

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// UserTotals holds guild-wide membership aggregates
type UserTotals struct {
	TotalUsers             int
	ActiveUsers            int
	TotalMissionsCompleted int
	AverageExperience      float64
}

// MissionTotals holds raw per-mission aggregates
type MissionTotals struct {
	MissionID     int
	MissionName   string
	TotalAttempts int
	Completed     int
	AverageScore  float64
}

// AnalyticsRepository defines the interface for analytics aggregates
type AnalyticsRepository interface {
	UserTotals(ctx context.Context) (*UserTotals, error)
	MissionTotals(ctx context.Context) ([]MissionTotals, error)
	TopUsers(ctx context.Context, limit int) ([]*model.User, error)
}

// AnalyticsService computes guild statistics with read-through caching
type AnalyticsService struct {
	analyticsRepo AnalyticsRepository
	progressRepo  MissionProgressRepository
	userRepo      UserRepository
	apiLogRepo    APILogRepository
	cache         cache.Cache
}

// AnalyticsServiceConfig holds configuration for the analytics service
type AnalyticsServiceConfig struct {
	AnalyticsRepo AnalyticsRepository
	ProgressRepo  MissionProgressRepository
	UserRepo      UserRepository
	APILogRepo    APILogRepository
	Cache         cache.Cache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(cfg AnalyticsServiceConfig) *AnalyticsService {
	c := cfg.Cache
	if c == nil {
		c = cache.NewNoop()
	}
	return &AnalyticsService{
		analyticsRepo: cfg.AnalyticsRepo,
		progressRepo:  cfg.ProgressRepo,
		userRepo:      cfg.UserRepo,
		apiLogRepo:    cfg.APILogRepo,
		cache:         c,
	}
}

// UserStats returns guild-wide membership statistics
func (s *AnalyticsService) UserStats(ctx context.Context) (*model.UserStats, error) {
	const key = "analytics:users"

	var cached model.UserStats
	if ok := s.readCache(ctx, key, &cached); ok {
		return &cached, nil
	}

	totals, err := s.analyticsRepo.UserTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{
		TotalUsers:             totals.TotalUsers,
		ActiveUsers:            totals.ActiveUsers,
		TotalMissionsCompleted: totals.TotalMissionsCompleted,
		AverageExperience:      totals.AverageExperience,
	}

	s.writeCache(ctx, key, stats, statsCacheTTL)
	return stats, nil
}

// MissionStats returns per-mission completion statistics
func (s *AnalyticsService) MissionStats(ctx context.Context) ([]model.MissionStat, error) {
	const key = "analytics:missions"

	var cached []model.MissionStat
	if ok := s.readCache(ctx, key, &cached); ok {
		return cached, nil
	}

	totals, err := s.analyticsRepo.MissionTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]model.MissionStat, 0, len(totals))
	for _, t := range totals {
		rate := 0.0
		if t.TotalAttempts > 0 {
			rate = float64(t.Completed) / float64(t.TotalAttempts) * 100
		}
		stats = append(stats, model.MissionStat{
			MissionID:      t.MissionID,
			MissionName:    t.MissionName,
			TotalAttempts:  t.TotalAttempts,
			CompletionRate: round2(rate),
			AverageScore:   round2(t.AverageScore),
		})
	}

	s.writeCache(ctx, key, stats, statsCacheTTL)
	return stats, nil
}

// UserPerformance returns one member's record across all missions
func (s *AnalyticsService) UserPerformance(ctx context.Context, userID string) (*model.UserPerformance, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	missions, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	perf := &model.UserPerformance{
		UserID:          user.ID,
		Username:        user.Username,
		GuildRank:       user.GuildRank,
		TotalExperience: user.ExperiencePoints,
		Missions:        missions,
	}

	if len(missions) == 0 {
		perf.Missions = []*model.MissionProgress{}
		return perf, nil
	}

	var completed int
	var scoreSum float64
	for _, m := range missions {
		if m.Status == model.ProgressCompleted {
			completed++
			scoreSum += m.Score
		}
	}

	perf.MissionsAttempted = len(missions)
	perf.MissionsCompleted = completed
	perf.CompletionRate = round2(float64(completed) / float64(len(missions)) * 100)
	if completed > 0 {
		perf.AverageScore = round2(scoreSum / float64(completed))
	}

	return perf, nil
}

// Leaderboard returns the top members by experience points
func (s *AnalyticsService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := "analytics:leaderboard:" + strconv.Itoa(limit)

	var cached []model.LeaderboardEntry
	if ok := s.readCache(ctx, key, &cached); ok {
		return cached, nil
	}

	users, err := s.analyticsRepo.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Rank:              i + 1,
			Username:          u.Username,
			GuildRank:         u.GuildRank,
			ExperiencePoints:  u.ExperiencePoints,
			MissionsCompleted: u.MissionsCompleted,
		})
	}

	s.writeCache(ctx, key, entries, leaderboardCacheTTL)
	return entries, nil
}

// APIUsage returns aggregate statistics over recorded outbound requests
func (s *AnalyticsService) APIUsage(ctx context.Context) (*model.APIUsageStats, error) {
	totals, err := s.apiLogRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.APIUsageStats{
		TotalRequests: totals.TotalRequests,
		Endpoints:     []model.EndpointUsage{},
	}

	if totals.TotalRequests == 0 {
		return stats, nil
	}

	stats.AverageResponseTime = round2(totals.AverageResponseTime)
	stats.SuccessRate = round2(float64(totals.SuccessCount) / float64(totals.TotalRequests) * 100)

	endpoints, err := s.apiLogRepo.EndpointTotals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range endpoints {
		endpoints[i].AvgResponseTime = round2(endpoints[i].AvgResponseTime)
	}
	stats.Endpoints = endpoints

	return stats, nil
}

// readCache attempts to decode a cached value into v
func (s *AnalyticsService) readCache(ctx context.Context, key string, v interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// writeCache stores v under key, ignoring cache failures
func (s *AnalyticsService) writeCache(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, ttl)
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
