package bookings

import (
	"context"
	"log"
	"time"
)

// JobProcessor runs the stale-pending sweep: PENDING bookings that never
// received a confirmation trigger are failed after a timeout window so they
// don't linger forever.
type JobProcessor struct {
	repo   Repository
	config *JobConfig
	done   chan struct{}
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	SweepInterval time.Duration
	PendingTTL    time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 5 * time.Minute,
		PendingTTL:    30 * time.Minute,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(repo Repository, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		repo:   repo,
		config: config,
		done:   make(chan struct{}),
	}
}

// Start starts the background sweep
func (jp *JobProcessor) Start(ctx context.Context) {
	log.Println("Starting booking background jobs...")
	go jp.startPendingSweeper(ctx)
}

// Stop stops the background sweep
func (jp *JobProcessor) Stop() {
	log.Println("Stopping booking background jobs...")
	close(jp.done)
}

func (jp *JobProcessor) startPendingSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.SweepInterval)
	defer ticker.Stop()

	log.Printf("Started stale pending sweeper with %v interval, %v TTL",
		jp.config.SweepInterval, jp.config.PendingTTL)

	for {
		select {
		case <-ticker.C:
			jp.sweepStalePending(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweepStalePending(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-jp.config.PendingTTL)
	swept, err := jp.repo.FailStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("Error sweeping stale pending bookings: %v", err)
		return
	}

	if swept > 0 {
		log.Printf("Failed %d stale pending bookings", swept)
	}
}
