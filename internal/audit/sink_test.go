package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	fail  bool
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.fail {
		return nil, errors.New("redis down")
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestRecordEnqueuesEntry(t *testing.T) {
	enq := &recordingEnqueuer{}
	sink := NewSink(enq, slog.Default())

	sink.Record(context.Background(), Entry{
		ActorID:  "u1",
		Action:   "create",
		Entity:   "kit",
		EntityID: "k1",
		Details:  map[string]any{"name": "ALS bag"},
	})

	require.Len(t, enq.tasks, 1)
	require.Equal(t, TaskTypeRecord, enq.tasks[0].Type())

	var entry Entry
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &entry))
	require.Equal(t, "u1", entry.ActorID)
	require.Equal(t, "kit", entry.Entity)
	require.False(t, entry.At.IsZero(), "At defaults to now")
}

func TestRecordNeverRaises(t *testing.T) {
	// Enqueue failure and missing client both swallow silently.
	sink := NewSink(&recordingEnqueuer{fail: true}, slog.Default())
	sink.Record(context.Background(), Entry{Action: "create", Entity: "kit", EntityID: "k1"})

	disabled := NewSink(nil, slog.Default())
	disabled.Record(context.Background(), Entry{Action: "create", Entity: "kit", EntityID: "k1"})
}

func TestHandleRecordTaskSkipsBadPayload(t *testing.T) {
	writer := NewWriter(nil)
	task := asynq.NewTask(TaskTypeRecord, []byte("{not json"))

	err := writer.HandleRecordTask(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewRecordTaskRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	task, err := NewRecordTask(Entry{ActorID: "u1", Action: "delete", Entity: "vehicle", EntityID: "v9", At: at})
	require.NoError(t, err)

	var entry Entry
	require.NoError(t, json.Unmarshal(task.Payload(), &entry))
	require.Equal(t, at, entry.At)
	require.Equal(t, "delete", entry.Action)
}
