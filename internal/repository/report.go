package repository

import (
	"log/slog"
	"time"

	"expensesync/internal/log"
)

// Entity names used in reports and logs.
const (
	EntityCategories = "categories"
	EntityExpenses   = "expenses"
	EntityImages     = "expense_images"
)

type Phase string

const (
	PhasePush   Phase = "push"
	PhasePull   Phase = "pull"
	PhaseUpload Phase = "upload"
)

// RowResult is the outcome of one row in a sync pass. Err is nil on success.
type RowResult struct {
	ID    string
	Phase Phase
	Err   error
}

func (r RowResult) OK() bool { return r.Err == nil }

// SyncReport accumulates the per-row results of one reconciliation call.
// PullErr is set when fetching the remote collection failed and the pull
// phase was abandoned.
type SyncReport struct {
	Entity   string
	Results  []RowResult
	PullErr  error
	Duration time.Duration
}

func (r *SyncReport) record(id string, phase Phase, err error) {
	r.Results = append(r.Results, RowResult{ID: id, Phase: phase, Err: err})
}

func (r SyncReport) count(phase Phase) int {
	n := 0
	for _, res := range r.Results {
		if res.Phase == phase && res.OK() {
			n++
		}
	}
	return n
}

// Pushed counts rows mirrored to the remote, including uploaded images.
func (r SyncReport) Pushed() int { return r.count(PhasePush) + r.count(PhaseUpload) }

// Pulled counts remote rows inserted locally.
func (r SyncReport) Pulled() int { return r.count(PhasePull) }

func (r SyncReport) Failures() []RowResult {
	var out []RowResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Clean reports whether every attempted row and the pull succeeded.
func (r SyncReport) Clean() bool {
	return r.PullErr == nil && len(r.Failures()) == 0
}

func (r SyncReport) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String(log.FieldEntity, r.Entity),
		slog.Int(log.FieldPushed, r.Pushed()),
		slog.Int(log.FieldPulled, r.Pulled()),
		slog.Int(log.FieldFailed, len(r.Failures())),
		slog.Int64(log.FieldDuration, r.Duration.Milliseconds()),
	}
	if r.PullErr != nil {
		attrs = append(attrs, slog.String(log.FieldError, r.PullErr.Error()))
	}
	return slog.GroupValue(attrs...)
}
