package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expensesync/internal/repository"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// Interval is how often a full sync runs (default: 5m)
	Interval time.Duration

	// CleanupInterval is how often stale staging images are removed (default: 1h)
	CleanupInterval time.Duration

	// SkipInitialSync waits for the first tick instead of syncing on Start.
	// Set it when the caller has just run a full sync itself.
	SkipInitialSync bool
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		Interval:        5 * time.Minute,
		CleanupInterval: 1 * time.Hour,
	}
}

type (
	FullSyncer interface {
		SyncAll(ctx context.Context) ([]repository.SyncReport, error)
	}

	TempCleaner interface {
		CleanupTemp(ctx context.Context, now time.Time) (int, error)
	}
)

// SyncProcessor runs a full sync on a fixed interval.
type SyncProcessor struct {
	syncer  FullSyncer
	cleaner TempCleaner
	config  SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor. cleaner may be nil.
func NewSyncProcessor(syncer FullSyncer, cleaner TempCleaner, config SyncProcessorConfig) *SyncProcessor {
	return &SyncProcessor{
		syncer:  syncer,
		cleaner: cleaner,
		config:  config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	if p.syncer == nil {
		p.mu.Unlock()
		return fmt.Errorf("sync processor has no syncer")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started", "interval", p.config.Interval)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	syncTicker := time.NewTicker(p.config.Interval)
	defer syncTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	if !p.config.SkipInitialSync {
		p.syncOnce(ctx)
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			p.syncOnce(ctx)
		case <-cleanupTicker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *SyncProcessor) syncOnce(ctx context.Context) {
	reports, err := p.syncer.SyncAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
	}
	for _, r := range reports {
		if !r.Clean() {
			slog.WarnContext(ctx, "Periodic sync left rows behind", "report", r)
		}
	}
}

func (p *SyncProcessor) cleanup(ctx context.Context) {
	if p.cleaner == nil {
		return
	}
	n, err := p.cleaner.CleanupTemp(ctx, time.Now())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to clean up staging images", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Removed stale staging images", "count", n)
	}
}
