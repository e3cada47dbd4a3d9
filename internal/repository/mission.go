package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guildhall/arena/internal/database"
	"github.com/guildhall/arena/internal/model"
)

// MissionProgressRepository handles mission progress data access
type MissionProgressRepository struct {
	db database.Database
}

// NewMissionProgressRepository creates a new mission progress repository
func NewMissionProgressRepository(db database.Database) *MissionProgressRepository {
	return &MissionProgressRepository{db: db}
}

// Create records a newly started mission attempt
func (r *MissionProgressRepository) Create(ctx context.Context, progress *model.MissionProgress) error {
	query := `
		CREATE mission_progress CONTENT {
			user: type::record($user),
			mission_id: $mission_id,
			mission_name: $mission_name,
			status: $status,
			score: $score,
			started_at: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":         progress.UserID,
		"mission_id":   progress.MissionID,
		"mission_name": progress.MissionName,
		"status":       progress.Status,
		"score":        progress.Score,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: mission already started", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	progress.ID = created.ID
	return nil
}

// GetByUserAndMission retrieves a user's progress on a specific mission
func (r *MissionProgressRepository) GetByUserAndMission(ctx context.Context, userID string, missionID int) (*model.MissionProgress, error) {
	query := `SELECT * FROM mission_progress WHERE user = type::record($user) AND mission_id = $mission_id LIMIT 1`
	vars := map[string]interface{}{
		"user":       userID,
		"mission_id": missionID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	progress, err := parseProgressResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return progress, nil
}

// ListByUser retrieves all mission progress records for a user ordered by mission
func (r *MissionProgressRepository) ListByUser(ctx context.Context, userID string) ([]*model.MissionProgress, error) {
	query := `SELECT * FROM mission_progress WHERE user = type::record($user) ORDER BY mission_id ASC`
	vars := map[string]interface{}{"user": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.MissionProgress{}, nil
	}

	records := make([]*model.MissionProgress, 0, len(rows))
	for _, row := range rows {
		progress, err := parseProgressResult(row)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, progress)
	}
	return records, nil
}

// Complete marks a mission attempt completed and applies the experience
// gain and rank to the user in a single atomic transaction. The caller
// computes the new totals; both writes succeed or fail together.
func (r *MissionProgressRepository) Complete(ctx context.Context, progressID string, score float64, user *model.User) error {
	batch := database.NewAtomicBatch()

	batch.Add(`
		UPDATE type::record($id) SET
			status = $status,
			score = $score,
			completed_at = time::now()
	`, map[string]interface{}{
		"id":     progressID,
		"status": model.ProgressCompleted,
		"score":  score,
	})

	batch.Add(`
		UPDATE type::record($id) SET
			experience_points = $experience_points,
			missions_completed = $missions_completed,
			guild_rank = $guild_rank,
			updated_on = time::now()
	`, map[string]interface{}{
		"id":                 user.ID,
		"experience_points":  user.ExperiencePoints,
		"missions_completed": user.MissionsCompleted,
		"guild_rank":         user.GuildRank,
	})

	return batch.Execute(ctx, r.db)
}

func parseProgressResult(result interface{}) (*model.MissionProgress, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Navigate through SurrealDB response structure
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	// Handle SurrealDB's complex ID format and map the record link to user_id
	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}
	if userID, ok := data["user"]; ok {
		data["user_id"] = convertSurrealID(userID)
		delete(data, "user")
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var progress model.MissionProgress
	if err := json.Unmarshal(jsonBytes, &progress); err != nil {
		return nil, err
	}

	return &progress, nil
}
