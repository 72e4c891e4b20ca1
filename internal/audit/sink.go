// Package audit records who did what, asynchronously. The sink enqueues and
// returns; persistence happens in the worker. Nothing here ever propagates a
// failure back to the caller: a lost audit record must not fail the
// operation it describes.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskTypeRecord is the task type for persisting one audit entry.
const TaskTypeRecord = "audit:record"

// Entry describes one authorized action for the trail.
type Entry struct {
	ActorID  string         `json:"actorId"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"at"`
}

// NewRecordTask constructs an Asynq task for one entry.
func NewRecordTask(entry Entry) (*asynq.Task, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecord, data, asynq.MaxRetry(3)), nil
}

// Enqueuer is the slice of the Asynq client the sink needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Sink enqueues audit entries fire-and-forget.
type Sink struct {
	client Enqueuer
	logger *slog.Logger
}

// NewSink builds a sink. A nil client turns Record into a logged no-op.
func NewSink(client Enqueuer, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{client: client, logger: logger}
}

// Record enqueues one entry. Failures are logged and swallowed.
func (s *Sink) Record(ctx context.Context, entry Entry) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	if s.client == nil {
		s.logger.Debug("audit sink disabled, dropping entry",
			slog.String("action", entry.Action), slog.String("entity", entry.Entity))
		return
	}
	task, err := NewRecordTask(entry)
	if err != nil {
		s.logger.Error("marshal audit entry", slog.Any("error", err))
		return
	}
	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		s.logger.Error("enqueue audit entry",
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.Any("error", err))
	}
}
