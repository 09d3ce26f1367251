package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"expensesync/internal/log"
)

// reconciler describes one entity's push-create / pull-insert pass. Local
// callbacks returning an error abort the pass; remote callbacks only fail
// their row.
type reconciler[T any] struct {
	entity string
	phase  Phase // recorded for pushed rows, PhasePush when empty
	id     func(T) string

	unsynced func(context.Context) ([]T, error)
	// push returns the row as it should be marked synced.
	push       func(context.Context, T) (T, error)
	markSynced func(context.Context, T) error

	// listRemote is nil for entities that are never pulled.
	listRemote  func(context.Context) ([]T, error)
	existsLocal func(context.Context, string) (bool, error)
	insertLocal func(context.Context, T) error
}

func reconcile[T any](ctx context.Context, s settings, r reconciler[T]) (SyncReport, error) {
	ctx, span := s.tracer.Start(ctx, "sync "+r.entity)
	defer span.End()

	start := s.now()
	report := SyncReport{Entity: r.entity}
	phase := r.phase
	if phase == "" {
		phase = PhasePush
	}
	finish := func(err error) (SyncReport, error) {
		report.Duration = s.now().Sub(start)
		span.SetAttributes(
			attribute.String(log.FieldEntity, r.entity),
			attribute.Int(log.FieldPushed, report.Pushed()),
			attribute.Int(log.FieldPulled, report.Pulled()),
			attribute.Int(log.FieldFailed, len(report.Failures())),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		if report.PullErr != nil {
			span.SetStatus(codes.Error, "pull aborted")
		}
		s.logger.InfoContext(ctx, "Sync pass finished", "report", report)
		return report, nil
	}

	pending, err := r.unsynced(ctx)
	if err != nil {
		return finish(fmt.Errorf("list unsynced %s: %w", r.entity, err))
	}

	for _, row := range pending {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		id := r.id(row)
		pushed, err := r.push(ctx, row)
		if err != nil {
			s.logger.SyncFailure(ctx, r.entity, string(phase), id, err)
			report.record(id, phase, err)
			continue
		}
		if err := r.markSynced(ctx, pushed); err != nil {
			return finish(fmt.Errorf("mark %s %s synced: %w", r.entity, id, err))
		}
		report.record(id, phase, nil)
	}

	if r.listRemote == nil {
		return finish(nil)
	}

	remoteRows, err := r.listRemote(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Pull aborted",
			log.NewFields().WithRow(r.entity, "").WithError(err, log.ErrorTypeRemote).ToSlice()...)
		report.PullErr = err
		return finish(nil)
	}

	for _, row := range remoteRows {
		id := r.id(row)
		exists, err := r.existsLocal(ctx, id)
		if err != nil {
			return finish(fmt.Errorf("look up %s %s: %w", r.entity, id, err))
		}
		// Existing local rows are never overwritten by the remote copy.
		if exists {
			continue
		}
		if err := r.insertLocal(ctx, row); err != nil {
			return finish(fmt.Errorf("insert pulled %s %s: %w", r.entity, id, err))
		}
		report.record(id, PhasePull, nil)
	}

	return finish(nil)
}
