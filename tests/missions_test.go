// Package tests contains end-to-end acceptance tests for the Arena API.
package tests

import (
	"context"
	"testing"

	"github.com/guildhall/arena/internal/model"
	"github.com/guildhall/arena/internal/repository"
	"github.com/guildhall/arena/internal/service"
	"github.com/guildhall/arena/internal/testing/fixtures"
	"github.com/guildhall/arena/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Mission Progression
DOMAIN: Missions

ACCEPTANCE CRITERIA:
===================

AC-MISSION-001: Start a Mission
  GIVEN an active member and a catalog mission
  WHEN the member starts the mission
  THEN an in_progress record is created
  AND starting it again fails with already started

AC-MISSION-002: Complete a Mission
  GIVEN a member with an in-progress mission
  WHEN the member completes it with a score
  THEN the score is clamped to [0, 100]
  AND experience of score/10 (truncated) is awarded
  AND the completion message names the mission

AC-MISSION-003: Rank Promotion
  GIVEN a member crossing a completion threshold
  WHEN a mission completes
  THEN the guild rank is recomputed from total completions

AC-MISSION-004: Complete Requires Start
  GIVEN a member who never started a mission
  WHEN the member completes it
  THEN the request fails with mission not started

AC-MISSION-005: Members Cannot Act for Others
  GIVEN two members
  WHEN one completes a mission for the other
  THEN the request fails with authorization error
  AND admins are exempt
*/

// createMissionService creates a MissionService instance for testing
func createMissionService(t *testing.T, tdb *testdb.TestDB) *service.MissionService {
	t.Helper()

	return service.NewMissionService(service.MissionServiceConfig{
		UserRepo:     repository.NewUserRepository(tdb.DB),
		ProgressRepo: repository.NewMissionProgressRepository(tdb.DB),
	})
}

func memberTokenClaims(user *model.User) *model.TokenClaims {
	return &model.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		GuildRank: string(user.GuildRank),
	}
}

func TestMissions_StartMission(t *testing.T) {
	// AC-MISSION-001: Start a Mission
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	user := f.CreateUser(t)

	progress, err := missionService.Start(ctx, user.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.MissionID)
	assert.Equal(t, model.ProgressInProgress, progress.Status)
	assert.Equal(t, model.MissionByID(3).Name, progress.MissionName)

	_, err = missionService.Start(ctx, user.ID, 3)
	assert.ErrorIs(t, err, service.ErrMissionAlreadyStarted)
}

func TestMissions_StartUnknownMission(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)

	user := f.CreateUser(t)

	_, err := missionService.Start(context.Background(), user.ID, 99)
	assert.ErrorIs(t, err, service.ErrMissionNotFound)
}

func TestMissions_CompleteMission(t *testing.T) {
	// AC-MISSION-002: Complete a Mission
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	user := f.CreateUser(t)
	actor := memberTokenClaims(user)

	_, err := missionService.Start(ctx, user.ID, 1)
	require.NoError(t, err)

	result, err := missionService.Complete(ctx, actor, user.ID, 1, 87.5)
	require.NoError(t, err)

	assert.Equal(t, "Mission 1 completed!", result.Message)
	assert.Equal(t, 8, result.ExperienceEarned)
	assert.Equal(t, 8, result.TotalExperience)
	assert.Equal(t, model.RankApprentice, result.GuildRank)

	// Completing again fails
	_, err = missionService.Complete(ctx, actor, user.ID, 1, 90)
	assert.ErrorIs(t, err, service.ErrMissionAlreadyCompleted)
}

func TestMissions_ScoreClamping(t *testing.T) {
	// AC-MISSION-002 (clamping): scores outside [0, 100] are clamped
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	user := f.CreateUser(t)
	actor := memberTokenClaims(user)

	_, err := missionService.Start(ctx, user.ID, 1)
	require.NoError(t, err)
	result, err := missionService.Complete(ctx, actor, user.ID, 1, 250)
	require.NoError(t, err)
	assert.Equal(t, 10, result.ExperienceEarned)

	_, err = missionService.Start(ctx, user.ID, 2)
	require.NoError(t, err)
	result, err = missionService.Complete(ctx, actor, user.ID, 2, -50)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExperienceEarned)
}

func TestMissions_RankPromotion(t *testing.T) {
	// AC-MISSION-003: Rank Promotion
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	// Two completions recorded; the third crosses the Adept threshold
	user := f.CreateVeteran(t, 2)
	actor := memberTokenClaims(user)

	_, err := missionService.Start(ctx, user.ID, 5)
	require.NoError(t, err)

	result, err := missionService.Complete(ctx, actor, user.ID, 5, 80)
	require.NoError(t, err)
	assert.Equal(t, model.RankAdept, result.GuildRank)
}

func TestMissions_CompleteRequiresStart(t *testing.T) {
	// AC-MISSION-004: Complete Requires Start
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)

	user := f.CreateUser(t)
	actor := memberTokenClaims(user)

	_, err := missionService.Complete(context.Background(), actor, user.ID, 4, 70)
	assert.ErrorIs(t, err, service.ErrMissionNotStarted)
}

func TestMissions_MemberCannotCompleteForOthers(t *testing.T) {
	// AC-MISSION-005: Members Cannot Act for Others
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	owner := f.CreateUser(t)
	intruder := f.CreateUser(t)
	admin := f.CreateAdmin(t)

	_, err := missionService.Start(ctx, owner.ID, 6)
	require.NoError(t, err)

	_, err = missionService.Complete(ctx, memberTokenClaims(intruder), owner.ID, 6, 90)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	// Admin may complete on behalf of a member
	result, err := missionService.Complete(ctx, memberTokenClaims(admin), owner.ID, 6, 90)
	require.NoError(t, err)
	assert.Equal(t, 9, result.ExperienceEarned)
}

func TestMissions_ProgressListing(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	missionService := createMissionService(t, tdb)
	ctx := context.Background()

	user := f.CreateUser(t)
	f.CreateProgress(t, user, 1)
	f.CreateCompletedProgress(t, user, 2, 75)

	records, err := missionService.Progress(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
