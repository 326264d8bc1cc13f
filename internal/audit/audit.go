// Package audit is the append-only activity log. Every state-changing ledger
// operation records exactly one event here. A failed write is an
// infrastructure fault: it is logged on its own channel and never propagated,
// so it can neither roll back nor hide the domain mutation that caused it.
package audit

import (
	"context"
	"iter"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/store"
)

// Recorder is the write side consumed by the ledger services. Record has no
// error return on purpose: the caller's domain operation must not depend on
// the audit write.
type Recorder interface {
	Record(ctx context.Context, ev domain.ActivityEvent)
}

// ActivityStore is the subset of the repository the log needs.
type ActivityStore interface {
	AppendActivity(ctx context.Context, ev domain.ActivityEvent) error
	ListActivity(ctx context.Context, f store.ActivityFilter) ([]domain.ActivityEvent, error)
}

// Log records and queries activity events.
type Log struct {
	store ActivityStore
}

// NewLog creates a Log backed by the given store.
func NewLog(s ActivityStore) *Log {
	return &Log{store: s}
}

// Record appends one event. Missing ID/Timestamp are filled in here so
// callers only describe what happened.
func (l *Log) Record(ctx context.Context, ev domain.ActivityEvent) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if err := l.store.AppendActivity(ctx, ev); err != nil {
		log.Printf("ERROR: audit append (%s %s): %v", ev.Type, ev.Action, err)
	}
}

// Query returns the matching events as a one-shot sequence ordered by
// timestamp ascending. The sequence is produced over a snapshot taken at
// call time; new events recorded afterwards are not observed, and ranging a
// second time yields nothing.
func (l *Log) Query(ctx context.Context, f store.ActivityFilter) (iter.Seq[domain.ActivityEvent], error) {
	events, err := l.store.ListActivity(ctx, f)
	if err != nil {
		return nil, err
	}
	consumed := false
	return func(yield func(domain.ActivityEvent) bool) {
		if consumed {
			return
		}
		consumed = true
		for _, ev := range events {
			if !yield(ev) {
				return
			}
		}
	}, nil
}
