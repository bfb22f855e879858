// Package handler exposes the leads module over HTTP.
package handler

import (
	"errors"
	"net/http"

	"roofline_backend/internal/chat"
	"roofline_backend/internal/leads/deletion"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/leads/service"
	"roofline_backend/internal/leads/transition"
	"roofline_backend/internal/leads/transport"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc       *service.Service
	engine    *transition.Engine
	deletion  *deletion.Service
	validate  *validator.Validator
	chatCreds chat.Credentials
}

func New(svc *service.Service, engine *transition.Engine, del *deletion.Service, validate *validator.Validator, chatCreds chat.Credentials) *Handler {
	return &Handler{
		svc:       svc,
		engine:    engine,
		deletion:  del,
		validate:  validate,
		chatCreds: chatCreds,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/pipeline", h.PipelineCounts)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.PUT("/:id/assign", h.Assign)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/notes", h.AddNote)
	rg.POST("/:id/deletion-request", h.RequestDeletion)
}

// RegisterAdminRoutes mounts the deletion review surface. The group is
// expected to already carry the admin role requirement.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/deletion-requests", h.ListDeletionRequests)
	rg.POST("/deletion-requests/:id/approve", h.ApproveDeletion)
	rg.POST("/deletion-requests/:id/deny", h.DenyDeletion)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), service.CreateLeadInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Phone:                 req.Phone,
		Email:                 req.Email,
		AddressStreet:         req.AddressStreet,
		AddressCity:           req.AddressCity,
		AddressState:          req.AddressState,
		AddressZip:            req.AddressZip,
		Status:                req.Status,
		AssignedToID:          req.AssignedToID,
		InsuranceCarrier:      req.InsuranceCarrier,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
		InsuranceClaimNumber:  req.InsuranceClaimNumber,
		Metadata:              req.Metadata,
	}, actor)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, repository.UpdateLeadParams{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Phone:                 req.Phone,
		Email:                 req.Email,
		AddressStreet:         req.AddressStreet,
		AddressCity:           req.AddressCity,
		AddressState:          req.AddressState,
		AddressZip:            req.AddressZip,
		AssignedToID:          req.AssignedToID.Value,
		AssignedToIDSet:       req.AssignedToID.Set,
		InsuranceCarrier:      req.InsuranceCarrier,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
		InsuranceClaimNumber:  req.InsuranceClaimNumber,
		Metadata:              req.Metadata,
	}, actor)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	lead, err := h.svc.Assign(c.Request.Context(), id, req.AssignedToID, actor)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// UpdateStatus runs the transition engine. The response body is always the
// engine's Result shape, on failure paired with the mapped status code.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	result, err := h.engine.TransitionStatus(c.Request.Context(), id, req.Status, actor, h.chatCreds)
	if err != nil {
		status := http.StatusBadRequest
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) {
			status = domainErr.HTTPStatus()
		}
		httpkit.JSON(c, status, result)
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	params := repository.ListParams{Search: req.Search}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}
	if req.AssignedToID != "" {
		assignee, err := uuid.Parse(req.AssignedToID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		params.AssignedToID = &assignee
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}
	params.Offset = (page - 1) * pageSize
	params.Limit = pageSize

	leads, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, transport.ToLeadResponse(lead))
	}

	totalPages := (total + pageSize - 1) / pageSize
	httpkit.OK(c, transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (h *Handler) PipelineCounts(c *gin.Context) {
	counts, err := h.svc.PipelineCounts(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make(map[string]int, len(counts))
	for status, count := range counts {
		out[string(status)] = count
	}
	httpkit.OK(c, transport.PipelineCountsResponse{Counts: out})
}

func (h *Handler) ListActivities(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	activities, err := h.svc.ActivityFeed(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, transport.ToActivityResponse(activity))
	}
	httpkit.OK(c, transport.ActivityListResponse{Items: items})
}

func (h *Handler) AddNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	activity, err := h.svc.AddNote(c.Request.Context(), id, req.Text, actor)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToActivityResponse(activity))
}

func (h *Handler) RequestDeletion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.RequestDeletionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, validator.Describe(err))
			return
		}
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	result, err := h.deletion.RequestDeletion(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		status := http.StatusBadRequest
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) {
			status = domainErr.HTTPStatus()
		}
		httpkit.JSON(c, status, result)
		return
	}

	httpkit.JSON(c, http.StatusAccepted, result)
}

func (h *Handler) ListDeletionRequests(c *gin.Context) {
	requests, err := h.deletion.ListPending(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.DeletionRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, transport.ToDeletionRequestResponse(request))
	}
	httpkit.OK(c, transport.DeletionRequestListResponse{Items: items})
}

func (h *Handler) ApproveDeletion(c *gin.Context) {
	h.resolveDeletion(c, true)
}

func (h *Handler) DenyDeletion(c *gin.Context) {
	h.resolveDeletion(c, false)
}

func (h *Handler) resolveDeletion(c *gin.Context, approve bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	var request repository.DeletionRequest
	if approve {
		request, err = h.deletion.Approve(c.Request.Context(), id, actor)
	} else {
		request, err = h.deletion.Deny(c.Request.Context(), id, actor)
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToDeletionRequestResponse(request))
}
