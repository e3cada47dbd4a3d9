package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guildhall/arena/internal/model"
)

// UsageTotals holds aggregate counters over all recorded requests
type UsageTotals struct {
	TotalRequests       int
	AverageResponseTime float64
	SuccessCount        int
}

// APILogRepository defines the interface for request log storage
type APILogRepository interface {
	Create(ctx context.Context, entry *model.APILog) error
	Totals(ctx context.Context) (*UsageTotals, error)
	EndpointTotals(ctx context.Context) ([]model.EndpointUsage, error)
}

const (
	recorderBuffer       = 256
	recorderWriteTimeout = 5 * time.Second
)

// APILogRecorder writes request log entries asynchronously so that
// outbound fetch latency never includes the log insert. Entries are
// dropped with a warning when the buffer is full.
type APILogRecorder struct {
	repo   APILogRepository
	logger *slog.Logger

	entries chan *model.APILog
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewAPILogRecorder creates a new recorder
func NewAPILogRecorder(repo APILogRepository, logger *slog.Logger) *APILogRecorder {
	return &APILogRecorder{
		repo:    repo,
		logger:  logger,
		entries: make(chan *model.APILog, recorderBuffer),
	}
}

// Start launches the background writer
func (r *APILogRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})

	r.wg.Add(1)
	go r.run()

	r.logger.Info("api log recorder started")
}

// Stop drains pending entries and stops the writer
func (r *APILogRecorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("api log recorder stopped")
}

// Record queues a log entry. It never blocks the caller.
func (r *APILogRecorder) Record(entry *model.APILog) {
	select {
	case r.entries <- entry:
	default:
		r.logger.Warn("api log buffer full, dropping entry",
			"endpoint", entry.Endpoint)
	}
}

func (r *APILogRecorder) run() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.entries:
			r.write(entry)
		case <-r.stopCh:
			// Drain whatever is queued before exiting
			for {
				select {
				case entry := <-r.entries:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *APILogRecorder) write(entry *model.APILog) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error("failed to write api log entry",
			"endpoint", entry.Endpoint,
			"error", err)
	}
}
