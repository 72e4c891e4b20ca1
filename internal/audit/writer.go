package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Writer persists audit entries from the worker side.
type Writer struct {
	pool *pgxpool.Pool
}

// NewWriter constructs a writer.
func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// HandleRecordTask processes TaskTypeRecord tasks. A payload that cannot be
// decoded will never decode; it skips retry.
func (w *Writer) HandleRecordTask(ctx context.Context, t *asynq.Task) error {
	var entry Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return fmt.Errorf("audit: decode entry: %w: %w", err, asynq.SkipRetry)
	}
	return w.insert(ctx, entry)
}

func (w *Writer) insert(ctx context.Context, entry Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("audit: marshal details: %w: %w", err, asynq.SkipRetry)
	}
	_, err = w.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, details, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ActorID, entry.Action, entry.Entity, entry.EntityID, details, entry.At)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}
