package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/guildhall/arena/internal/database"
	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// AnalyticsRepository runs aggregate queries over users and mission
// progress. Aggregation happens in SurrealDB rather than loading whole
// tables into memory.
type AnalyticsRepository struct {
	db database.Database
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db database.Database) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// UserTotals returns membership aggregates across all users
func (r *AnalyticsRepository) UserTotals(ctx context.Context) (*service.UserTotals, error) {
	query := `
		SELECT
			count() AS total_users,
			count(active = true) AS active_users,
			math::sum(missions_completed) AS total_missions_completed,
			math::mean(experience_points) AS average_experience
		FROM user GROUP ALL
	`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &service.UserTotals{}, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return &service.UserTotals{}, nil
	}

	return &service.UserTotals{
		TotalUsers:             getInt(data, "total_users"),
		ActiveUsers:            getInt(data, "active_users"),
		TotalMissionsCompleted: getInt(data, "total_missions_completed"),
		AverageExperience:      getFloat(data, "average_experience"),
	}, nil
}

// MissionTotals returns per-mission attempt aggregates ordered by mission ID
func (r *AnalyticsRepository) MissionTotals(ctx context.Context) ([]service.MissionTotals, error) {
	query := `
		SELECT
			mission_id,
			mission_name,
			count() AS total_attempts,
			count(status = 'completed') AS completed,
			math::mean(score) AS average_score
		FROM mission_progress GROUP BY mission_id, mission_name
	`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []service.MissionTotals{}, nil
	}

	totals := make([]service.MissionTotals, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		totals = append(totals, service.MissionTotals{
			MissionID:     getInt(data, "mission_id"),
			MissionName:   getString(data, "mission_name"),
			TotalAttempts: getInt(data, "total_attempts"),
			Completed:     getInt(data, "completed"),
			AverageScore:  getFloat(data, "average_score"),
		})
	}

	// GROUP BY does not guarantee ordering
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].MissionID < totals[j].MissionID
	})

	return totals, nil
}

// TopUsers returns users ordered by experience points descending
func (r *AnalyticsRepository) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT * FROM user ORDER BY experience_points DESC LIMIT $limit`
	vars := map[string]interface{}{"limit": limit}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.User{}, nil
	}

	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		user, err := parseUserResult(row)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
