package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleMember UserRole = "member" // Default role
	UserRoleAdmin  UserRole = "admin"  // Full access including user deletion and cache administration
)

// GuildRank represents a user's standing in the guild, earned by
// completing missions.
type GuildRank string

const (
	RankApprentice GuildRank = "Apprentice"
	RankAdept      GuildRank = "Adept"
	RankJourneyman GuildRank = "Journeyman"
	RankExpert     GuildRank = "Expert"
	RankMaster     GuildRank = "Master"
)

// Rank promotion thresholds on completed mission count.
const (
	adeptThreshold      = 3
	journeymanThreshold = 7
	expertThreshold     = 10
	masterThreshold     = 13
)

// RankForMissions returns the guild rank earned for a completed mission count.
func RankForMissions(completed int) GuildRank {
	switch {
	case completed >= masterThreshold:
		return RankMaster
	case completed >= expertThreshold:
		return RankExpert
	case completed >= journeymanThreshold:
		return RankJourneyman
	case completed >= adeptThreshold:
		return RankAdept
	default:
		return RankApprentice
	}
}

// User represents a guild member account
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Hash              *string   `json:"-"` // Never expose password hash
	FullName          *string   `json:"full_name,omitempty"`
	Role              UserRole  `json:"role"`
	Active            bool      `json:"active"`
	GuildRank         GuildRank `json:"guild_rank"`
	ExperiencePoints  int       `json:"experience_points"`
	MissionsCompleted int       `json:"missions_completed"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	GuildRank string `json:"guild_rank,omitempty"`
}
