package services

import (
	"context"
	"time"

	"github.com/icar-directory/backend/internal/models"
	"go.uber.org/zap"
)

// Backlog summarizes the pending moderation queue at one point in time.
type Backlog struct {
	Total    int                       `json:"total"`
	ByEntity map[models.EntityType]int `json:"by_entity"`
	Oldest   *models.EditRecord        `json:"oldest,omitempty"`
	Stale    int                       `json:"stale"`
}

// BacklogReporter periodically inspects the pending queue and logs edits
// that have waited longer than staleAfter.
type BacklogReporter struct {
	ledger     Ledger
	staleAfter time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewBacklogReporter(ledger Ledger, staleAfter time.Duration, log *zap.Logger) *BacklogReporter {
	return &BacklogReporter{ledger: ledger, staleAfter: staleAfter, now: time.Now, log: log}
}

func (r *BacklogReporter) Snapshot(ctx context.Context) (*Backlog, error) {
	pending, err := r.ledger.ListPending(ctx, nil)
	if err != nil {
		return nil, storeErr("list pending", err)
	}

	b := &Backlog{Total: len(pending), ByEntity: map[models.EntityType]int{}}
	cutoff := r.now().Add(-r.staleAfter)
	for i := range pending {
		e := &pending[i]
		b.ByEntity[e.EntityType]++
		if b.Oldest == nil || e.SubmittedAt.Before(b.Oldest.SubmittedAt) {
			b.Oldest = e
		}
		if r.staleAfter > 0 && e.SubmittedAt.Before(cutoff) {
			b.Stale++
		}
	}
	return b, nil
}

// Report takes a snapshot and logs it. Stale edits are logged at warn level.
func (r *BacklogReporter) Report(ctx context.Context) {
	b, err := r.Snapshot(ctx)
	if err != nil {
		r.log.Error("failed to inspect pending edits", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("pending", b.Total),
		zap.Int("stakeholder", b.ByEntity[models.EntityStakeholder]),
		zap.Int("project", b.ByEntity[models.EntityProject]),
	}
	if b.Oldest != nil {
		fields = append(fields,
			zap.String("oldest_edit_id", b.Oldest.ID.String()),
			zap.Duration("oldest_age", r.now().Sub(b.Oldest.SubmittedAt)),
		)
	}

	if b.Stale > 0 {
		r.log.Warn("pending edits waiting for review", append(fields, zap.Int("stale", b.Stale))...)
		return
	}
	r.log.Info("moderation backlog", fields...)
}
