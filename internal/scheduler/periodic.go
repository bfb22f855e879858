package scheduler

import (
	"fmt"

	"roofline_backend/platform/config"

	"github.com/hibiken/asynq"
)

// NewPeriodicScheduler returns an asynq scheduler with the recurring jobs
// registered. The worker process runs it alongside the task server.
func NewPeriodicScheduler(cfg config.SchedulerConfig) (*asynq.Scheduler, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	sched := asynq.NewScheduler(opt, nil)

	if _, err := sched.Register("@daily", NewDeletionRequestCleanupTask(), asynq.Queue(queueName(cfg))); err != nil {
		return nil, fmt.Errorf("register cleanup schedule: %w", err)
	}

	return sched, nil
}
