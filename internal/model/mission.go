package model

import "time"

// ProgressStatus represents the state of a user's attempt at a mission
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// Mission is a catalog entry. The catalog is static; progress against it
// lives in MissionProgress.
type Mission struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Focus string `json:"focus"`
}

// missionCatalog is the fixed set of guild missions, in order.
var missionCatalog = []Mission{
	{ID: 1, Name: "The First Flame", Focus: "FastAPI Basics"},
	{ID: 2, Name: "Records of Apprentices", Focus: "SQLAlchemy & CRUD"},
	{ID: 3, Name: "Seal of the Keeper", Focus: "JWT Authentication"},
	{ID: 4, Name: "External Scrolls", Focus: "API Integration"},
	{ID: 5, Name: "Parallel Prophecies", Focus: "Async Programming"},
	{ID: 6, Name: "The Guild Archives", Focus: "Data Analysis"},
	{ID: 7, Name: "Echo of Time", Focus: "Redis Caching"},
	{ID: 8, Name: "Circle of Truth", Focus: "Testing & CI"},
	{ID: 9, Name: "The Forge", Focus: "Packaging"},
	{ID: 10, Name: "Ascension", Focus: "Docker Deployment"},
	{ID: 11, Name: "The Whispering Stream", Focus: "WebSockets"},
	{ID: 12, Name: "The Mirror Gateway", Focus: "GraphQL"},
	{ID: 13, Name: "The Sky Forge", Focus: "Cloud Deployment"},
}

// MissionCatalog returns the full mission catalog.
func MissionCatalog() []Mission {
	catalog := make([]Mission, len(missionCatalog))
	copy(catalog, missionCatalog)
	return catalog
}

// MissionByID returns the catalog entry for an ID, or nil if unknown.
func MissionByID(id int) *Mission {
	if id < 1 || id > len(missionCatalog) {
		return nil
	}
	m := missionCatalog[id-1]
	return &m
}

// MissionCount is the number of missions in the catalog.
func MissionCount() int {
	return len(missionCatalog)
}

// MissionProgress tracks a user's attempt at a single mission.
// One row per (user, mission).
type MissionProgress struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	MissionID   int            `json:"mission_id"`
	MissionName string         `json:"mission_name"`
	Status      ProgressStatus `json:"status"`
	Score       float64        `json:"score"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}
