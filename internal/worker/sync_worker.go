package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensesync/internal/amqp"
	"expensesync/internal/log"
	"expensesync/internal/repository"
	"expensesync/internal/services"
)

// Syncer is the slice of services.SyncService the worker drives.
type Syncer interface {
	Sync(ctx context.Context, entities ...string) ([]repository.SyncReport, error)
	SeedDefaults(ctx context.Context) (bool, error)
}

// SyncWorker turns sync-request messages into reconciliation passes.
type SyncWorker struct {
	syncer Syncer
}

func NewSyncWorker(syncer Syncer) *SyncWorker {
	return &SyncWorker{syncer: syncer}
}

// HandleSyncRequest runs the passes a message asks for. Only local-store
// failures are returned, so the broker redelivers the message; remote
// failures stay in the reports and are retried by the next request.
// Requests naming unknown entities are dropped.
func (w *SyncWorker) HandleSyncRequest(ctx context.Context, msg *amqp.SyncRequestMessage) error {
	slog.InfoContext(ctx, "Processing sync request",
		"entities", msg.Entities,
		log.FieldReason, msg.Reason,
		"timestamp", msg.Timestamp)

	reports, err := w.syncer.Sync(ctx, msg.Entities...)
	if errors.Is(err, services.ErrUnknownEntity) {
		slog.WarnContext(ctx, "Dropping sync request", log.FieldError, err)
		return nil
	}
	logReports(ctx, reports)
	if err != nil {
		return fmt.Errorf("handle sync request: %w", err)
	}
	return nil
}

// StartupSyncCheck seeds the default categories if the store is empty and
// then runs a full sync, recovering from requests missed while the worker
// was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	seeded, err := w.syncer.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed default categories: %w", err)
	}
	if seeded {
		slog.InfoContext(ctx, "Seeded default categories on startup")
	}

	reports, err := w.syncer.Sync(ctx)
	logReports(ctx, reports)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}

	pushed, pulled, failed := 0, 0, 0
	for _, r := range reports {
		pushed += r.Pushed()
		pulled += r.Pulled()
		failed += len(r.Failures())
	}
	slog.InfoContext(ctx, "Startup sync completed",
		log.FieldPushed, pushed,
		log.FieldPulled, pulled,
		log.FieldFailed, failed)

	return nil
}

func logReports(ctx context.Context, reports []repository.SyncReport) {
	for _, r := range reports {
		if r.Clean() {
			slog.DebugContext(ctx, "Sync pass clean", "report", r)
			continue
		}
		for _, f := range r.Failures() {
			slog.WarnContext(ctx, "Row not synced",
				log.NewFields().
					WithRow(r.Entity, f.ID).
					With(log.FieldPhase, string(f.Phase)).
					WithError(f.Err, log.ErrorTypeRemote).
					ToSlice()...)
		}
		if r.PullErr != nil {
			slog.WarnContext(ctx, "Pull abandoned",
				log.NewFields().With(log.FieldEntity, r.Entity).WithError(r.PullErr, log.ErrorTypeRemote).ToSlice()...)
		}
	}
}
