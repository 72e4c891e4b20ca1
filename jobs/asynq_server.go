// Package jobs hosts the background worker that drains the audit queue.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/emskit/emskit/internal/audit"
)

// QueueDefault is the queue name for background jobs.
const QueueDefault = "default"

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	AuditWriter *audit.Writer
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	if cfg.AuditWriter != nil {
		mux.HandleFunc(audit.TaskTypeRecord, cfg.AuditWriter.HandleRecordTask)
	}
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts the server and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.logger.Info("shutting down worker")
	w.server.Shutdown()
	return nil
}
