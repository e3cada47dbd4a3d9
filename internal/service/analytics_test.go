package service

import (
	"context"
	"errors"
	"testing"

	"github.com/guildhall/arena/internal/model"
)

// Mock aggregate repositories

type mockAnalyticsRepo struct {
	userTotalsFunc    func(ctx context.Context) (*UserTotals, error)
	missionTotalsFunc func(ctx context.Context) ([]MissionTotals, error)
	topUsersFunc      func(ctx context.Context, limit int) ([]*model.User, error)
}

func (m *mockAnalyticsRepo) UserTotals(ctx context.Context) (*UserTotals, error) {
	if m.userTotalsFunc != nil {
		return m.userTotalsFunc(ctx)
	}
	return &UserTotals{}, nil
}

func (m *mockAnalyticsRepo) MissionTotals(ctx context.Context) ([]MissionTotals, error) {
	if m.missionTotalsFunc != nil {
		return m.missionTotalsFunc(ctx)
	}
	return nil, nil
}

func (m *mockAnalyticsRepo) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	if m.topUsersFunc != nil {
		return m.topUsersFunc(ctx, limit)
	}
	return nil, nil
}

type mockAPILogRepo struct {
	totalsFunc         func(ctx context.Context) (*UsageTotals, error)
	endpointTotalsFunc func(ctx context.Context) ([]model.EndpointUsage, error)
	createFunc         func(ctx context.Context, entry *model.APILog) error
}

func (m *mockAPILogRepo) Create(ctx context.Context, entry *model.APILog) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	return nil
}

func (m *mockAPILogRepo) Totals(ctx context.Context) (*UsageTotals, error) {
	if m.totalsFunc != nil {
		return m.totalsFunc(ctx)
	}
	return &UsageTotals{}, nil
}

func (m *mockAPILogRepo) EndpointTotals(ctx context.Context) ([]model.EndpointUsage, error) {
	if m.endpointTotalsFunc != nil {
		return m.endpointTotalsFunc(ctx)
	}
	return nil, nil
}

// UserStats

func TestAnalyticsService_UserStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		AnalyticsRepo: &mockAnalyticsRepo{
			userTotalsFunc: func(ctx context.Context) (*UserTotals, error) {
				return &UserTotals{
					TotalUsers:             42,
					ActiveUsers:            40,
					TotalMissionsCompleted: 130,
					AverageExperience:      55.5,
				}, nil
			},
		},
	})

	stats, err := svc.UserStats(ctx)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.TotalUsers != 42 {
		t.Errorf("expected 42 total users, got %d", stats.TotalUsers)
	}
	if stats.ActiveUsers != 40 {
		t.Errorf("expected 40 active users, got %d", stats.ActiveUsers)
	}
	if stats.AverageExperience != 55.5 {
		t.Errorf("expected average experience 55.5, got %v", stats.AverageExperience)
	}
}

func TestAnalyticsService_UserStats_EmptyGuild(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		AnalyticsRepo: &mockAnalyticsRepo{},
	})

	stats, err := svc.UserStats(ctx)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.TotalUsers != 0 || stats.AverageExperience != 0 {
		t.Error("expected zeroed stats for an empty guild")
	}
}

// MissionStats

func TestAnalyticsService_MissionStats_Rates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		AnalyticsRepo: &mockAnalyticsRepo{
			missionTotalsFunc: func(ctx context.Context) ([]MissionTotals, error) {
				return []MissionTotals{
					{MissionID: 1, MissionName: "First Steps", TotalAttempts: 3, Completed: 2, AverageScore: 81.666},
					{MissionID: 2, MissionName: "Data Forge", TotalAttempts: 4, Completed: 0, AverageScore: 0},
				}, nil
			},
		},
	})

	stats, err := svc.MissionStats(ctx)
	if err != nil {
		t.Fatalf("MissionStats failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	if stats[0].CompletionRate != 66.67 {
		t.Errorf("expected completion rate 66.67, got %v", stats[0].CompletionRate)
	}
	if stats[0].AverageScore != 81.67 {
		t.Errorf("expected average score 81.67, got %v", stats[0].AverageScore)
	}
	if stats[1].CompletionRate != 0 {
		t.Errorf("expected completion rate 0, got %v", stats[1].CompletionRate)
	}
}

func TestAnalyticsService_MissionStats_NoAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		AnalyticsRepo: &mockAnalyticsRepo{},
	})

	stats, err := svc.MissionStats(ctx)
	if err != nil {
		t.Fatalf("MissionStats failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected empty stats, got %d rows", len(stats))
	}
}

// UserPerformance

func TestAnalyticsService_UserPerformance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	user := &model.User{
		ID:               "user:ember",
		Username:         "ember",
		GuildRank:        model.RankAdept,
		ExperiencePoints: 25,
	}
	userRepo.users[user.ID] = user

	progressRepo := &mockProgressRepo{
		listByUserFunc: func(ctx context.Context, userID string) ([]*model.MissionProgress, error) {
			return []*model.MissionProgress{
				{MissionID: 1, Status: model.ProgressCompleted, Score: 90},
				{MissionID: 2, Status: model.ProgressCompleted, Score: 75},
				{MissionID: 3, Status: model.ProgressInProgress, Score: 0},
			}, nil
		},
	}

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
	})

	perf, err := svc.UserPerformance(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserPerformance failed: %v", err)
	}
	if perf.MissionsAttempted != 3 {
		t.Errorf("expected 3 attempted, got %d", perf.MissionsAttempted)
	}
	if perf.MissionsCompleted != 2 {
		t.Errorf("expected 2 completed, got %d", perf.MissionsCompleted)
	}
	if perf.CompletionRate != 66.67 {
		t.Errorf("expected completion rate 66.67, got %v", perf.CompletionRate)
	}
	// Average over completed missions only
	if perf.AverageScore != 82.5 {
		t.Errorf("expected average score 82.5, got %v", perf.AverageScore)
	}
	if perf.GuildRank != model.RankAdept {
		t.Errorf("expected guild rank Adept, got %s", perf.GuildRank)
	}
}

func TestAnalyticsService_UserPerformance_NoMissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	user := &model.User{ID: "user:novice", Username: "novice", GuildRank: model.RankApprentice}
	userRepo.users[user.ID] = user

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		UserRepo:     userRepo,
		ProgressRepo: &mockProgressRepo{},
	})

	perf, err := svc.UserPerformance(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserPerformance failed: %v", err)
	}
	if perf.MissionsAttempted != 0 || perf.CompletionRate != 0 || perf.AverageScore != 0 {
		t.Error("expected zeroed performance for member with no missions")
	}
	if perf.Missions == nil || len(perf.Missions) != 0 {
		t.Error("expected empty missions slice, not nil")
	}
}

func TestAnalyticsService_UserPerformance_UserNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		UserRepo:     newMockUserRepo(),
		ProgressRepo: &mockProgressRepo{},
	})

	_, err := svc.UserPerformance(ctx, "user:ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// Leaderboard

func TestAnalyticsService_Leaderboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotLimit int
	svc := NewAnalyticsService(AnalyticsServiceConfig{
		AnalyticsRepo: &mockAnalyticsRepo{
			topUsersFunc: func(ctx context.Context, limit int) ([]*model.User, error) {
				gotLimit = limit
				return []*model.User{
					{Username: "ember", GuildRank: model.RankMaster, ExperiencePoints: 120, MissionsCompleted: 13},
					{Username: "sage", GuildRank: model.RankExpert, ExperiencePoints: 95, MissionsCompleted: 11},
				}, nil
			},
		},
	})

	entries, err := svc.Leaderboard(ctx, 5)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5 passed through, got %d", gotLimit)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Error("entries should be ranked starting at 1")
	}
	if entries[0].Username != "ember" {
		t.Errorf("expected ember first, got %s", entries[0].Username)
	}
}

func TestAnalyticsService_Leaderboard_LimitBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero defaults", 0, defaultLeaderboardLimit},
		{"negative defaults", -3, defaultLeaderboardLimit},
		{"over max capped", 500, maxLeaderboardLimit},
		{"in range passes through", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			svc := NewAnalyticsService(AnalyticsServiceConfig{
				AnalyticsRepo: &mockAnalyticsRepo{
					topUsersFunc: func(ctx context.Context, limit int) ([]*model.User, error) {
						gotLimit = limit
						return nil, nil
					},
				},
			})

			_, err := svc.Leaderboard(ctx, tt.limit)
			if err != nil {
				t.Fatalf("Leaderboard failed: %v", err)
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, gotLimit)
			}
		})
	}
}

// APIUsage

func TestAnalyticsService_APIUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		APILogRepo: &mockAPILogRepo{
			totalsFunc: func(ctx context.Context) (*UsageTotals, error) {
				return &UsageTotals{
					TotalRequests:       8,
					AverageResponseTime: 123.4567,
					SuccessCount:        6,
				}, nil
			},
			endpointTotalsFunc: func(ctx context.Context) ([]model.EndpointUsage, error) {
				return []model.EndpointUsage{
					{Endpoint: "https://api.github.com/users/octocat", RequestCount: 5, AvgResponseTime: 101.2345},
				}, nil
			},
		},
	})

	stats, err := svc.APIUsage(ctx)
	if err != nil {
		t.Fatalf("APIUsage failed: %v", err)
	}
	if stats.TotalRequests != 8 {
		t.Errorf("expected 8 requests, got %d", stats.TotalRequests)
	}
	if stats.AverageResponseTime != 123.46 {
		t.Errorf("expected rounded average 123.46, got %v", stats.AverageResponseTime)
	}
	if stats.SuccessRate != 75 {
		t.Errorf("expected success rate 75, got %v", stats.SuccessRate)
	}
	if len(stats.Endpoints) != 1 {
		t.Fatalf("expected 1 endpoint row, got %d", len(stats.Endpoints))
	}
	if stats.Endpoints[0].AvgResponseTime != 101.23 {
		t.Errorf("expected rounded endpoint average 101.23, got %v", stats.Endpoints[0].AvgResponseTime)
	}
}

func TestAnalyticsService_APIUsage_NoRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAnalyticsService(AnalyticsServiceConfig{
		APILogRepo: &mockAPILogRepo{},
	})

	stats, err := svc.APIUsage(ctx)
	if err != nil {
		t.Fatalf("APIUsage failed: %v", err)
	}
	if stats.TotalRequests != 0 || stats.SuccessRate != 0 {
		t.Error("expected zeroed usage stats")
	}
	if stats.Endpoints == nil || len(stats.Endpoints) != 0 {
		t.Error("expected empty endpoints slice, not nil")
	}
}

// round2

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.67},
		{0, 0},
		{99.994, 99.99},
		{99.996, 100},
		{12.3, 12.3},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
