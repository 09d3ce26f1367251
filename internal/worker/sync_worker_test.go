package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensesync/internal/amqp"
	"expensesync/internal/repository"
	"expensesync/internal/services"
)

type stubSyncer struct {
	requested [][]string
	seedCalls int
	err       error
	reports   []repository.SyncReport
}

func (s *stubSyncer) Sync(_ context.Context, entities ...string) ([]repository.SyncReport, error) {
	s.requested = append(s.requested, entities)
	return s.reports, s.err
}

func (s *stubSyncer) SeedDefaults(context.Context) (bool, error) {
	s.seedCalls++
	return s.seedCalls == 1, nil
}

func TestNewSyncWorker(t *testing.T) {
	w := NewSyncWorker(nil)
	if w == nil {
		t.Fatal("NewSyncWorker should return non-nil worker")
	}
}

func TestHandleSyncRequestPassesEntities(t *testing.T) {
	s := &stubSyncer{reports: []repository.SyncReport{{
		Entity:  repository.EntityExpenses,
		Results: []repository.RowResult{{ID: "e1", Phase: repository.PhasePush, Err: errors.New("timeout")}},
	}}}
	w := NewSyncWorker(s)

	msg := amqp.NewSyncRequestMessage("expense created", repository.EntityExpenses)
	require.NoError(t, w.HandleSyncRequest(context.Background(), msg), "remote failures do not requeue")
	assert.Equal(t, [][]string{{repository.EntityExpenses}}, s.requested)
}

func TestHandleSyncRequestLocalErrorRequeues(t *testing.T) {
	s := &stubSyncer{err: errors.New("database is locked")}
	w := NewSyncWorker(s)

	err := w.HandleSyncRequest(context.Background(), amqp.NewSyncRequestMessage("manual"))
	assert.Error(t, err)
}

func TestHandleSyncRequestDropsUnknownEntity(t *testing.T) {
	s := &stubSyncer{err: fmt.Errorf("%w %q", services.ErrUnknownEntity, "invoices")}
	w := NewSyncWorker(s)

	err := w.HandleSyncRequest(context.Background(), amqp.NewSyncRequestMessage("manual", "invoices"))
	assert.NoError(t, err)
}

func TestStartupSyncCheckSeedsThenSyncsAll(t *testing.T) {
	s := &stubSyncer{}
	w := NewSyncWorker(s)

	require.NoError(t, w.StartupSyncCheck(context.Background()))
	assert.Equal(t, 1, s.seedCalls)
	require.Len(t, s.requested, 1)
	assert.Empty(t, s.requested[0])
}
