package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultIdleTimeout is how long a session may sit untouched before
	// the cleanup job evicts it.
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultCleanupInterval is the default interval between cleanup runs.
	DefaultCleanupInterval = 5 * time.Minute
)

// CleanupConfig holds configuration for the idle-eviction job.
type CleanupConfig struct {
	IdleTimeout     time.Duration // evict sessions idle longer than this (default: 30m)
	CleanupInterval time.Duration // interval between cleanup runs (default: 5m)
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		IdleTimeout:     DefaultIdleTimeout,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// CleanupJob periodically evicts idle sessions from a Store.
type CleanupJob struct {
	store  *Store
	config CleanupConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewCleanupJob creates a new idle-eviction job.
func NewCleanupJob(store *Store, config CleanupConfig) *CleanupJob {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	return &CleanupJob{
		store:  store,
		config: config,
	}
}

// Start begins the periodic cleanup job.
// This method is non-blocking and starts the cleanup in a goroutine.
func (j *CleanupJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return nil // Already running
	}

	j.running = true
	j.stopChan = make(chan struct{})

	go j.run(ctx)

	slog.Info("session cleanup job started",
		"idle_timeout", j.config.IdleTimeout,
		"interval", j.config.CleanupInterval)

	return nil
}

// Stop stops the cleanup job.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}

	close(j.stopChan)
	j.running = false

	slog.Info("session cleanup job stopped")
}

// RunOnce executes a single cleanup run immediately.
// Useful for testing or manual cleanup.
func (j *CleanupJob) RunOnce() int {
	return j.store.CleanupIdle(j.config.IdleTimeout)
}

// run is the main loop for the cleanup job.
func (j *CleanupJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			if evicted := j.RunOnce(); evicted > 0 {
				slog.Info("session cleanup completed", "evicted", evicted)
			}
		}
	}
}

// IsRunning returns whether the cleanup job is currently running.
func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
