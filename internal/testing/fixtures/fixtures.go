// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories handle database insertion
// and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	user := f.CreateUser(t)
//	progress := f.CreateProgress(t, user, 1)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/guildhall/arena/internal/database"
	"github.com/guildhall/arena/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Username          string
	Email             string
	Password          string
	Role              model.UserRole
	Active            bool
	GuildRank         model.GuildRank
	ExperiencePoints  int
	MissionsCompleted int
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Username:  fmt.Sprintf("user_%s", randomID()),
		Email:     fmt.Sprintf("user_%s@test.local", randomID()),
		Password:  "testpass123",
		Role:      model.UserRoleMember,
		Active:    true,
		GuildRank: model.RankApprentice,
	}
	for _, fn := range opts {
		fn(o)
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	query := `
		CREATE user CONTENT {
			username: $username,
			email: $email,
			hash: $hash,
			role: $role,
			active: $active,
			guild_rank: $guild_rank,
			experience_points: $experience_points,
			missions_completed: $missions_completed,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"username":           o.Username,
		"email":              o.Email,
		"hash":               string(hash),
		"role":               string(o.Role),
		"active":             o.Active,
		"guild_rank":         string(o.GuildRank),
		"experience_points":  o.ExperiencePoints,
		"missions_completed": o.MissionsCompleted,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user := parseUserResult(t, results)
	user.Hash = nil // Don't expose hash in fixture
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
		o.GuildRank = model.RankMaster
	})
}

// CreateVeteran creates a member with enough completed missions for the
// given rank threshold.
func (f *Factory) CreateVeteran(t *testing.T, missionsCompleted int) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.MissionsCompleted = missionsCompleted
		o.ExperiencePoints = missionsCompleted * 8
		o.GuildRank = model.RankForMissions(missionsCompleted)
	})
}

// ============================================================================
// Mission Progress Fixtures
// ============================================================================

// ProgressOpts customizes mission progress creation
type ProgressOpts struct {
	Status model.ProgressStatus
	Score  float64
}

// CreateProgress creates an in-progress mission record for a user
func (f *Factory) CreateProgress(t *testing.T, user *model.User, missionID int, opts ...func(*ProgressOpts)) *model.MissionProgress {
	t.Helper()

	o := &ProgressOpts{
		Status: model.ProgressInProgress,
	}
	for _, fn := range opts {
		fn(o)
	}

	mission := model.MissionByID(missionID)
	if mission == nil {
		t.Fatalf("fixtures: unknown mission %d", missionID)
	}

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
		"user":         user.ID,
		"mission_id":   missionID,
		"mission_name": mission.Name,
		"status":       string(o.Status),
		"score":        o.Score,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create mission progress: %v", err)
	}

	return parseProgressResult(t, results)
}

// CreateCompletedProgress creates a completed mission record with a score
func (f *Factory) CreateCompletedProgress(t *testing.T, user *model.User, missionID int, score float64) *model.MissionProgress {
	t.Helper()

	progress := f.CreateProgress(t, user, missionID, func(o *ProgressOpts) {
		o.Status = model.ProgressCompleted
		o.Score = score
	})

	query := `UPDATE type::record($id) SET completed_at = time::now()`
	if err := f.db.Execute(ctx(), query, map[string]interface{}{"id": progress.ID}); err != nil {
		t.Fatalf("fixtures: failed to mark progress completed: %v", err)
	}
	return progress
}

// ============================================================================
// API Log Fixtures
// ============================================================================

// APILogOpts customizes api log creation
type APILogOpts struct {
	Endpoint       string
	Method         string
	StatusCode     int
	ResponseTimeMS float64
}

// CreateAPILog creates an api_log row for usage analytics tests
func (f *Factory) CreateAPILog(t *testing.T, user *model.User, opts ...func(*APILogOpts)) {
	t.Helper()

	o := &APILogOpts{
		Endpoint:       "/v1/external/fetch",
		Method:         "GET",
		StatusCode:     200,
		ResponseTimeMS: 42.5,
	}
	for _, fn := range opts {
		fn(o)
	}

	var userID interface{}
	if user != nil {
		userID = user.ID
	}

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
	if err := f.db.Execute(ctx(), query, map[string]interface{}{
		"user":             userID,
		"endpoint":         o.Endpoint,
		"method":           o.Method,
		"status_code":      o.StatusCode,
		"response_time_ms": o.ResponseTimeMS,
	}); err != nil {
		t.Fatalf("fixtures: failed to create api log: %v", err)
	}
}

// ============================================================================
// Result Parsing Helpers
// ============================================================================

func parseUserResult(t *testing.T, results []interface{}) *model.User {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.User{
		ID:                getString(data, "id"),
		Username:          getString(data, "username"),
		Email:             getString(data, "email"),
		Role:              model.UserRole(getString(data, "role")),
		Active:            getBool(data, "active"),
		GuildRank:         model.GuildRank(getString(data, "guild_rank")),
		ExperiencePoints:  getInt(data, "experience_points"),
		MissionsCompleted: getInt(data, "missions_completed"),
		CreatedOn:         getTime(data, "created_on"),
		UpdatedOn:         getTime(data, "updated_on"),
	}
}

func parseProgressResult(t *testing.T, results []interface{}) *model.MissionProgress {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.MissionProgress{
		ID:          getString(data, "id"),
		UserID:      getString(data, "user"),
		MissionID:   getInt(data, "mission_id"),
		MissionName: getString(data, "mission_name"),
		Status:      model.ProgressStatus(getString(data, "status")),
		Score:       getFloat(data, "score"),
	}
}

// ============================================================================
// Data Extraction Helpers
// ============================================================================

func extractFirstResult(t *testing.T, results []interface{}) map[string]interface{} {
	t.Helper()
	if len(results) == 0 {
		t.Fatal("fixtures: no results returned")
	}

	// Handle SurrealDB response wrapper
	resp, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", results[0])
	}

	result, ok := resp["result"]
	if !ok {
		t.Fatal("fixtures: no result in response")
	}

	// Handle array result
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			t.Fatal("fixtures: empty result array")
		}
		data, ok := arr[0].(map[string]interface{})
		if !ok {
			t.Fatalf("fixtures: unexpected array item type: %T", arr[0])
		}
		return data
	}

	// Handle single result
	data, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", result)
	}
	return data
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	// Handle SurrealDB 3 record ID type - could be a struct or map
	if v := data[key]; v != nil {
		// Try to get the ID as a map with "tb" (table) and "id" fields
		if m, ok := v.(map[string]interface{}); ok {
			if tb, ok := m["tb"].(string); ok {
				if id := m["id"]; id != nil {
					return fmt.Sprintf("%s:%v", tb, id)
				}
			}
		}
		// Fallback: use string conversion but fix the format if needed
		s := fmt.Sprintf("%v", v)
		// Convert "{table id}" to "table:id"
		if len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}' {
			inner := s[1 : len(s)-1]
			for i, c := range inner {
				if c == ' ' {
					return inner[:i] + ":" + inner[i+1:]
				}
			}
		}
		return s
	}
	return ""
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getInt(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func getFloat(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(string); ok {
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	}
	return time.Time{}
}
