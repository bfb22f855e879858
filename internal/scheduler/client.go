// Package scheduler runs background jobs over Redis using asynq.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"roofline_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueDeletionRequestCleanup queues one immediate cleanup run.
func (c *Client) EnqueueDeletionRequestCleanup(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	_, err := c.client.EnqueueContext(ctx, NewDeletionRequestCleanupTask(), asynq.Queue(c.queue))
	return err
}

// followUpReminderDelay is how long a lead sits in follow-ups before the
// assigned rep gets nudged.
const followUpReminderDelay = 48 * time.Hour

// EnqueueFollowUpReminder queues a delayed follow-up nudge for a lead. The
// worker re-checks the lead's stage at processing time, so a lead that has
// moved on produces no notification.
func (c *Client) EnqueueFollowUpReminder(ctx context.Context, leadID uuid.UUID, leadName string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewFollowUpReminderTask(leadID, leadName)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.ProcessIn(followUpReminderDelay))
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
