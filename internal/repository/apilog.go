package repository

import (
	"context"
	"errors"

	"github.com/guildhall/arena/internal/database"
	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/service"
)

// APILogRepository handles request log data access
type APILogRepository struct {
	db database.Database
}

// NewAPILogRepository creates a new API log repository
func NewAPILogRepository(db database.Database) *APILogRepository {
	return &APILogRepository{db: db}
}

// Create inserts a request log entry
func (r *APILogRepository) Create(ctx context.Context, entry *model.APILog) error {
	query := `
		CREATE api_log CONTENT {
			user: IF $user IS NOT NULL THEN type::record($user) ELSE NONE END,
			endpoint: $endpoint,
			method: $method,
			status_code: $status_code,
			response_time_ms: $response_time_ms,
			created_on: time::now()
		}
	`

	var userID interface{}
	if entry.UserID != "" {
		userID = entry.UserID
	}

	vars := map[string]interface{}{
		"user":             userID,
		"endpoint":         entry.Endpoint,
		"method":           entry.Method,
		"status_code":      entry.StatusCode,
		"response_time_ms": entry.ResponseTimeMS,
	}

	return r.db.Execute(ctx, query, vars)
}

// Totals returns aggregate request counts and timings
func (r *APILogRepository) Totals(ctx context.Context) (*service.UsageTotals, error) {
	query := `
		SELECT
			count() AS total_requests,
			math::mean(response_time_ms) AS average_response_time,
			count(status_code < 400) AS success_count
		FROM api_log GROUP ALL
	`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &service.UsageTotals{}, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return &service.UsageTotals{}, nil
	}

	return &service.UsageTotals{
		TotalRequests:       getInt(data, "total_requests"),
		AverageResponseTime: getFloat(data, "average_response_time"),
		SuccessCount:        getInt(data, "success_count"),
	}, nil
}

// EndpointTotals returns per-endpoint request counts and mean response times
func (r *APILogRepository) EndpointTotals(ctx context.Context) ([]model.EndpointUsage, error) {
	query := `
		SELECT
			endpoint,
			count() AS request_count,
			math::mean(response_time_ms) AS avg_response_time
		FROM api_log GROUP BY endpoint
	`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []model.EndpointUsage{}, nil
	}

	usage := make([]model.EndpointUsage, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		usage = append(usage, model.EndpointUsage{
			Endpoint:        getString(data, "endpoint"),
			RequestCount:    getInt(data, "request_count"),
			AvgResponseTime: getFloat(data, "avg_response_time"),
		})
	}
	return usage, nil
}
