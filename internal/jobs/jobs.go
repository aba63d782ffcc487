// AngelaMos | 2026
// jobs.go

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/angelamos/localmart/internal/config"
)

const TaskTokenPurge = "maintenance:purge_tokens"

// TokenPurger removes refresh tokens past their expiry.
type TokenPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Runner owns the asynq worker and the periodic schedule. Maintenance
// runs through redis like everything else, so any instance can pick the
// work up and duplicate schedules collapse.
type Runner struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *slog.Logger
}

func NewRunner(
	cfg config.RedisConfig,
	purger TokenPurger,
	logger *slog.Logger,
) (*Runner, error) {
	opt, err := asynq.ParseRedisURI(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"maintenance": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(
			func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("job failed", "type", task.Type(), "error", err)
			},
		),
	})

	scheduler := asynq.NewScheduler(opt, nil)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTokenPurge, func(ctx context.Context, _ *asynq.Task) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		deleted, err := purger.DeleteExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge tokens: %w", err)
		}

		logger.Info("expired refresh tokens purged", "deleted", deleted)
		return nil
	})

	return &Runner{
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		logger:    logger,
	}, nil
}

// Start registers the schedule and launches worker and scheduler.
func (r *Runner) Start() error {
	task := asynq.NewTask(TaskTokenPurge, nil)
	if _, err := r.scheduler.Register(
		"0 3 * * *",
		task,
		asynq.Queue("maintenance"),
		asynq.MaxRetry(3),
	); err != nil {
		return fmt.Errorf("register schedule: %w", err)
	}

	if err := r.server.Start(r.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	if err := r.scheduler.Start(); err != nil {
		r.server.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}

	return nil
}

// Shutdown drains in-flight jobs and stops the schedule.
func (r *Runner) Shutdown() {
	r.scheduler.Shutdown()
	r.server.Shutdown()
}
