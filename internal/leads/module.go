// Package leads provides the lead pipeline bounded context module.
package leads

import (
	"roofline_backend/internal/calendar"
	"roofline_backend/internal/chat"
	"roofline_backend/internal/events"
	apphttp "roofline_backend/internal/http"
	"roofline_backend/internal/leads/deletion"
	"roofline_backend/internal/leads/handler"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/leads/scheduling"
	"roofline_backend/internal/leads/service"
	"roofline_backend/internal/leads/sideeffect"
	"roofline_backend/internal/leads/transition"
	"roofline_backend/internal/scheduler"
	"roofline_backend/internal/storage"
	"roofline_backend/platform/config"
	"roofline_backend/platform/logger"
	"roofline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	photos     *handler.PhotosHandler
	service    *service.Service
	engine     *transition.Engine
	deletion   *deletion.Service
	repository *repository.Repository
}

// NewModule wires the leads context: repository, management service,
// transition engine with its side-effect collaborators, and the deletion
// review workflow.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, photos *storage.PhotoStore, tasks *scheduler.Client, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	mgmtSvc := service.New(repo, eventBus, log)

	rules, err := scheduling.LoadRules(cfg.GetAutoScheduleRulesPath())
	if err != nil {
		return nil, err
	}
	calendarClient := calendar.NewClient(cfg, log)
	schedulingSvc := scheduling.New(rules, calendarClient)

	chatClient := chat.NewClient(log)
	runner := sideeffect.NewRunner(log)
	engine := transition.NewEngine(repo, runner, chatClient, schedulingSvc, eventBus)
	if tasks != nil {
		engine = engine.WithFollowUpReminder(tasks)
	}

	deletionSvc := deletion.New(repo, photoRemover(photos), eventBus, log)

	chatCreds := chat.Credentials{
		WebhookURL: cfg.GetChatWebhookURL(),
		BotToken:   cfg.GetChatBotToken(),
		Channel:    cfg.GetChatChannel(),
	}
	h := handler.New(mgmtSvc, engine, deletionSvc, val, chatCreds)
	ph := handler.NewPhotosHandler(repo, photos)

	return &Module{
		handler:    h,
		photos:     ph,
		service:    mgmtSvc,
		engine:     engine,
		deletion:   deletionSvc,
		repository: repo,
	}, nil
}

// photoRemover keeps the deletion service's dependency nil-safe: a nil
// *PhotoStore must become a nil interface, not a typed nil.
func photoRemover(photos *storage.PhotoStore) deletion.ObjectRemover {
	if photos == nil {
		return nil
	}
	return photos
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead management service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// TransitionEngine returns the status transition engine for external use.
func (m *Module) TransitionEngine() *transition.Engine {
	return m.engine
}

// Repository returns the leads repository for cross-module adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
	m.photos.RegisterRoutes(leadsGroup)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
