// Package notification turns domain events into admin emails and in-app
// notifications. Domain modules publish events and never learn who gets
// told about them.
package notification

import (
	"context"
	"fmt"
	"net/http"

	"roofline_backend/internal/email"
	"roofline_backend/internal/events"
	apphttp "roofline_backend/internal/http"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resourceTypeDeletionRequest = "deletion_request"

// Module subscribes to domain events and fans them out to recipients.
type Module struct {
	repo   *Repository
	sender email.Sender
	log    *logger.Logger
}

func New(pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) *Module {
	return &Module{
		repo:   NewRepository(pool),
		sender: sender,
		log:    log,
	}
}

// RegisterHandlers wires the module's event subscriptions. All fan-out is
// best-effort: the originating write has already committed.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadDeletionRequested{}.EventName(), events.HandlerFunc(m.onDeletionRequested))
}

func (m *Module) onDeletionRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadDeletionRequested)
	if !ok {
		return nil
	}

	admins, err := m.repo.ListAdmins(ctx)
	if err != nil {
		m.log.Error("could not list admins for deletion request fan-out", "requestId", e.RequestID, "error", err)
		return err
	}
	if len(admins) == 0 {
		m.log.Warn("no admins to notify for deletion request", "requestId", e.RequestID)
		return nil
	}

	statusLabel := domain.Status(e.LeadStatus).Label()
	resourceID := e.RequestID
	resourceType := resourceTypeDeletionRequest
	content := fmt.Sprintf("%s asked to delete %s (%s)", e.RequestedByName, e.LeadName, statusLabel)

	for _, admin := range admins {
		if _, err := m.repo.Create(ctx, CreateParams{
			UserID:       admin.ID,
			Title:        "Lead deletion requested",
			Content:      content,
			ResourceID:   &resourceID,
			ResourceType: &resourceType,
			Category:     "approval",
		}); err != nil {
			m.log.Error("could not create in-app notification", "userId", admin.ID, "error", err)
		}

		if err := m.sender.SendDeletionRequestedEmail(ctx, admin.Email, email.DeletionRequestedEmail{
			LeadName:        e.LeadName,
			LeadAddress:     e.LeadAddress,
			LeadStatusLabel: statusLabel,
			RequestedByName: e.RequestedByName,
			Reason:          e.Reason,
		}); err != nil {
			m.log.Error("could not send deletion request email", "to", admin.Email, "error", err)
		}
	}

	return nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes mounts the bell-menu endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rg := ctx.Protected.Group("/notifications")
	rg.GET("", m.list)
	rg.GET("/unread-count", m.unreadCount)
	rg.POST("/:id/read", m.markRead)
	rg.POST("/read-all", m.markAllRead)
}

func (m *Module) list(c *gin.Context) {
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	items, err := m.repo.List(c.Request.Context(), actor.UserID(), 50)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not list notifications")
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (m *Module) unreadCount(c *gin.Context) {
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	count, err := m.repo.CountUnread(c.Request.Context(), actor.UserID())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not count notifications")
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

func (m *Module) markRead(c *gin.Context) {
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := m.repo.MarkRead(c.Request.Context(), id, actor.UserID()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

func (m *Module) markAllRead(c *gin.Context) {
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	if err := m.repo.MarkAllRead(c.Request.Context(), actor.UserID()); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not update notifications")
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

var _ apphttp.Module = (*Module)(nil)
