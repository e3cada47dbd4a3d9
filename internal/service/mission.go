package service

import (
	"context"
	"fmt"

	"github.com/guildhall/arena/internal/cache"
	"github.com/guildhall/arena/internal/model"
)

// MissionProgressRepository defines the interface for mission progress storage
type MissionProgressRepository interface {
	Create(ctx context.Context, progress *model.MissionProgress) error
	GetByUserAndMission(ctx context.Context, userID string, missionID int) (*model.MissionProgress, error)
	ListByUser(ctx context.Context, userID string) ([]*model.MissionProgress, error)
	Complete(ctx context.Context, progressID string, score float64, user *model.User) error
}

// MissionService handles the mission catalog and member progression
type MissionService struct {
	userRepo     UserRepository
	progressRepo MissionProgressRepository
	cache        cache.Cache
}

// MissionServiceConfig holds configuration for the mission service
type MissionServiceConfig struct {
	UserRepo     UserRepository
	ProgressRepo MissionProgressRepository
	Cache        cache.Cache
}

// NewMissionService creates a new mission service
func NewMissionService(cfg MissionServiceConfig) *MissionService {
	c := cfg.Cache
	if c == nil {
		c = cache.NewNoop()
	}
	return &MissionService{
		userRepo:     cfg.UserRepo,
		progressRepo: cfg.ProgressRepo,
		cache:        c,
	}
}

// Catalog returns the mission catalog
func (s *MissionService) Catalog() []model.Mission {
	return model.MissionCatalog()
}

// Start begins a mission attempt for a member
func (s *MissionService) Start(ctx context.Context, userID string, missionID int) (*model.MissionProgress, error) {
	mission := model.MissionByID(missionID)
	if mission == nil {
		return nil, ErrMissionNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.progressRepo.GetByUserAndMission(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == model.ProgressCompleted {
			return nil, ErrMissionAlreadyCompleted
		}
		return nil, ErrMissionAlreadyStarted
	}

	progress := &model.MissionProgress{
		UserID:      userID,
		MissionID:   mission.ID,
		MissionName: mission.Name,
		Status:      model.ProgressInProgress,
	}

	if err := s.progressRepo.Create(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// Progress returns all mission progress records for a member
func (s *MissionService) Progress(ctx context.Context, userID string) ([]*model.MissionProgress, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.progressRepo.ListByUser(ctx, userID)
}

// CompletionResult reports the outcome of a completed mission
type CompletionResult struct {
	Message          string          `json:"message"`
	ExperienceEarned int             `json:"experience_earned"`
	TotalExperience  int             `json:"total_experience"`
	GuildRank        model.GuildRank `json:"guild_rank"`
}

// Complete marks a started mission as completed, awarding experience and
// recomputing the member's guild rank. Members may complete their own
// missions; admins may complete anyone's. Scores outside [0, 100] are
// clamped. The progress update and user update are atomic.
func (s *MissionService) Complete(ctx context.Context, actor *model.TokenClaims, userID string, missionID int, score float64) (*CompletionResult, error) {
	if actor.UserID != userID && actor.Role != string(model.UserRoleAdmin) {
		return nil, ErrNotAuthorized
	}

	if model.MissionByID(missionID) == nil {
		return nil, ErrMissionNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	progress, err := s.progressRepo.GetByUserAndMission(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrMissionNotStarted
	}
	if progress.Status == model.ProgressCompleted {
		return nil, ErrMissionAlreadyCompleted
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	// 10 XP per full-score mission
	earned := int(score / 10)
	user.ExperiencePoints += earned
	user.MissionsCompleted++
	user.GuildRank = model.RankForMissions(user.MissionsCompleted)

	if err := s.progressRepo.Complete(ctx, progress.ID, score, user); err != nil {
		return nil, err
	}

	// Completion changes every aggregate view
	_, _ = s.cache.DeletePattern(ctx, "analytics:*")

	return &CompletionResult{
		Message:          fmt.Sprintf("Mission %d completed!", missionID),
		ExperienceEarned: earned,
		TotalExperience:  user.ExperiencePoints,
		GuildRank:        user.GuildRank,
	}, nil
}
