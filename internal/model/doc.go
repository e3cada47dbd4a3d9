// Package model defines domain entities and data structures for the Arena API.
//
// The model package contains all struct definitions for domain objects, the
// static mission catalog, and error definitions. Models are used across all
// layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - User: Guild member with credentials, experience points, and guild rank
//   - Mission: Static catalog entry describing one of the thirteen missions
//   - MissionProgress: A user's attempt at a mission (status, score, timestamps)
//   - APILog: Record of an outbound API call for usage analytics
//
// # Guild Ranks
//
// Ranks are derived from completed mission count via RankForMissions:
// Apprentice (0-2), Adept (3-6), Journeyman (7-9), Expert (10-12),
// Master (13).
//
// # JSON Serialization
//
// All models use json struct tags for API serialization. Sensitive fields
// such as the password hash carry `json:"-"`.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
