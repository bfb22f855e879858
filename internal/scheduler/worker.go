package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/notification"
	"roofline_backend/platform/config"
	"roofline_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkerConfig combines the config interfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
}

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	repo          *repository.Repository
	notifications *notification.Repository
	retention     time.Duration
	log           *logger.Logger
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		repo:          repository.New(pool),
		notifications: notification.NewRepository(pool),
		retention:     cfg.GetDeletionRequestRetention(),
		log:           log,
	}

	mux.HandleFunc(TaskDeletionRequestCleanup, w.handleDeletionRequestCleanup)
	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

// handleDeletionRequestCleanup deletes APPROVED and DENIED requests whose
// resolution is older than the retention window. PENDING requests are
// never touched.
func (w *Worker) handleDeletionRequestCleanup(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-w.retention)

	deleted, err := w.repo.DeleteResolvedDeletionRequestsBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("deletion request cleanup failed", "error", err)
		return err
	}

	w.log.Info("deletion request cleanup complete", "deleted", deleted, "cutoff", cutoff)
	return nil
}

// handleFollowUpReminder notifies the assigned rep about a lead still
// parked in follow-ups. Leads that were deleted, reassigned to nobody, or
// moved to another stage since the task was enqueued are skipped.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		w.log.Error("invalid follow-up reminder payload", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	lead, err := w.repo.GetByID(ctx, payload.LeadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if lead.Status != domain.StatusFollowUps || lead.AssignedToID == nil {
		return nil
	}

	resourceType := "lead"
	_, err = w.notifications.Create(ctx, notification.CreateParams{
		UserID:       *lead.AssignedToID,
		Title:        "Follow-up due",
		Content:      fmt.Sprintf("%s is still in Follow Ups", lead.FullName()),
		ResourceID:   &lead.ID,
		ResourceType: &resourceType,
		Category:     "reminder",
	})
	if err != nil {
		return err
	}

	w.log.Info("follow-up reminder delivered", "leadId", lead.ID, "userId", *lead.AssignedToID)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
