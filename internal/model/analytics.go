package model

// UserStats summarizes the guild's membership
type UserStats struct {
	TotalUsers             int     `json:"total_users"`
	ActiveUsers            int     `json:"active_users"`
	TotalMissionsCompleted int     `json:"total_missions_completed"`
	AverageExperience      float64 `json:"average_experience"`
}

// MissionStat summarizes attempts at a single mission
type MissionStat struct {
	MissionID      int     `json:"mission_id"`
	MissionName    string  `json:"mission_name"`
	TotalAttempts  int     `json:"total_attempts"`
	CompletionRate float64 `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
}

// UserPerformance details one member's record across all missions.
// AverageScore covers completed missions only.
type UserPerformance struct {
	UserID            string             `json:"user_id"`
	Username          string             `json:"username"`
	GuildRank         GuildRank          `json:"guild_rank"`
	TotalExperience   int                `json:"total_experience"`
	MissionsAttempted int                `json:"missions_attempted"`
	MissionsCompleted int                `json:"missions_completed"`
	CompletionRate    float64            `json:"completion_rate"`
	AverageScore      float64            `json:"average_score"`
	Missions          []*MissionProgress `json:"missions"`
}

// LeaderboardEntry is one row of the experience leaderboard
type LeaderboardEntry struct {
	Rank              int       `json:"rank"`
	Username          string    `json:"username"`
	GuildRank         GuildRank `json:"guild_rank"`
	ExperiencePoints  int       `json:"experience_points"`
	MissionsCompleted int       `json:"missions_completed"`
}

// APIUsageStats summarizes recorded API traffic. SuccessRate counts
// responses with status below 400.
type APIUsageStats struct {
	TotalRequests       int             `json:"total_requests"`
	AverageResponseTime float64         `json:"average_response_time"`
	SuccessRate         float64         `json:"success_rate"`
	Endpoints           []EndpointUsage `json:"endpoints"`
}
