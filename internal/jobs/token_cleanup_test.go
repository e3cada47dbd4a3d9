package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockTokenStore struct {
	mu           sync.Mutex
	expiredCalls int
	revokedCalls int
	expiredErr   error
}

func (m *mockTokenStore) DeleteExpiredTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiredCalls++
	return m.expiredErr
}

func (m *mockTokenStore) CleanupRevokedTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedCalls++
	return nil
}

func (m *mockTokenStore) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiredCalls, m.revokedCalls
}

func TestTokenCleanup_RunOnce(t *testing.T) {
	t.Parallel()
	store := &mockTokenStore{}
	job := NewTokenCleanup(store, time.Hour)

	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expired, revoked := store.counts()
	if expired != 1 || revoked != 1 {
		t.Errorf("expected one call each, got expired=%d revoked=%d", expired, revoked)
	}
}

func TestTokenCleanup_RunOnce_StopsOnError(t *testing.T) {
	t.Parallel()
	store := &mockTokenStore{expiredErr: errors.New("db down")}
	job := NewTokenCleanup(store, time.Hour)

	if err := job.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	_, revoked := store.counts()
	if revoked != 0 {
		t.Errorf("revoked cleanup should not run after expired cleanup fails, got %d calls", revoked)
	}
}

func TestTokenCleanup_StartStop(t *testing.T) {
	t.Parallel()
	store := &mockTokenStore{}
	job := NewTokenCleanup(store, time.Hour)

	job.Start()
	if !job.IsRunning() {
		t.Error("expected job to be running after Start")
	}

	// Start is idempotent
	job.Start()

	job.Stop()
	if job.IsRunning() {
		t.Error("expected job to be stopped after Stop")
	}

	// Stop is idempotent
	job.Stop()
}
