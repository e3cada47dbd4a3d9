package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/guildhall/arena/internal/service"
)

// LeaderboardWarmer keeps the default leaderboard view warm in the cache
// so the first request after a cache expiry does not pay the aggregate
// query. It is a no-op when caching is disabled; the computed entries
// are simply discarded.
type LeaderboardWarmer struct {
	analyticsService *service.AnalyticsService
	interval         time.Duration
	stopCh           chan struct{}
	wg               sync.WaitGroup
	running          bool
	mu               sync.Mutex
}

// NewLeaderboardWarmer creates a new leaderboard warmer job
func NewLeaderboardWarmer(analyticsService *service.AnalyticsService, interval time.Duration) *LeaderboardWarmer {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &LeaderboardWarmer{
		analyticsService: analyticsService,
		interval:         interval,
		stopCh:           make(chan struct{}),
	}
}

// Start begins the leaderboard warmer job
func (j *LeaderboardWarmer) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Leaderboard warmer started (interval: %v)", j.interval)
}

// Stop gracefully stops the leaderboard warmer job
func (j *LeaderboardWarmer) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Leaderboard warmer stopped")
}

// run is the main loop
func (j *LeaderboardWarmer) run() {
	defer j.wg.Done()

	// Short delay so the first warm happens after services settle
	select {
	case <-time.After(5 * time.Second):
	case <-j.stopCh:
		return
	}
	j.warm()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.warm()
		case <-j.stopCh:
			return
		}
	}
}

func (j *LeaderboardWarmer) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Leaderboard writes through to the cache as a side effect
	if _, err := j.analyticsService.Leaderboard(ctx, 0); err != nil {
		log.Printf("Error warming leaderboard: %v", err)
	}
}

// RunOnce runs the warm once (for testing or manual trigger)
func (j *LeaderboardWarmer) RunOnce(ctx context.Context) error {
	_, err := j.analyticsService.Leaderboard(ctx, 0)
	return err
}

// IsRunning returns whether the job is running
func (j *LeaderboardWarmer) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
