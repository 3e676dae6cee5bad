// Package worker runs reminder dispatch in the background: an asynq server
// consumes the hourly task the scheduler registers and hands it to the
// reminder engine. The HTTP cron trigger is an alternative entry to the same
// engine; either path works on its own.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/config"
	"github.com/applyfast/cold-dm-tracker/internal/reminders"
	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskDispatchReminders = "reminders:dispatch"
)

// Start starts the asynq worker in non-blocking mode and returns a stop
// function so the caller can coordinate shutdown.
func Start(cfg *config.Config, engine *reminders.Engine, logger *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDispatchReminders, handleDispatchReminders(logger, engine))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	logger.Info("Worker started", "concurrency", 5, "redis", cfg.RedisURL)
	return func() { srv.Shutdown() }, nil
}

// handleDispatchReminders runs one pass of the reminder engine. The engine
// isolates per-user failures itself; a task error here means the user query
// failed and the task should retry.
func handleDispatchReminders(logger *slog.Logger, engine *reminders.Engine) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		sent, err := engine.Run(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("reminder dispatch failed: %w", err)
		}
		logger.Info("reminder dispatch task completed", "emails_sent", sent)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
			)
		}
	}
}
