package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/config"
	"github.com/hibiken/asynq"
)

// reminderCronSpec fires at the top of every hour so every timezone's
// send-hour boundary is caught.
const reminderCronSpec = "0 * * * *"

// StartScheduler creates and starts an asynq Scheduler that enqueues the
// hourly reminder dispatch task. Returns a stop function for graceful
// shutdown.
func StartScheduler(cfg *config.Config, logger *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// The scheduler clock stays UTC; per-user timezone math lives in the
	// reminder engine.
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	task := asynq.NewTask(
		TaskDispatchReminders,
		nil, // empty payload - handler queries all users
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Hour), // prevent duplicate if scheduler runs twice
	)

	entryID, err := scheduler.Register(reminderCronSpec, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register reminder schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info(
		"Scheduler started",
		"schedule", reminderCronSpec,
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}
