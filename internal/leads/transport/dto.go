// Package transport defines the request and response shapes of the leads
// HTTP surface. DTOs stay here so the domain types never grow json tags.
package transport

import (
	"time"

	"roofline_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	FirstName             string         `json:"firstName" validate:"required,min=1,max=100"`
	LastName              string         `json:"lastName" validate:"required,min=1,max=100"`
	Phone                 string         `json:"phone" validate:"required,min=5,max=20"`
	Email                 *string        `json:"email,omitempty" validate:"omitempty,email"`
	AddressStreet         string         `json:"addressStreet" validate:"required,min=1,max=200"`
	AddressCity           string         `json:"addressCity" validate:"required,min=1,max=100"`
	AddressState          string         `json:"addressState" validate:"required,min=2,max=50"`
	AddressZip            string         `json:"addressZip" validate:"required,min=1,max=20"`
	Status                string         `json:"status,omitempty" validate:"omitempty,oneof=follow_ups signed_contract scheduled colors acv job completed_jobs zero_balance denied"`
	AssignedToID          *uuid.UUID     `json:"assignedToId,omitempty"`
	InsuranceCarrier      *string        `json:"insuranceCarrier,omitempty" validate:"omitempty,max=200"`
	InsurancePolicyNumber *string        `json:"insurancePolicyNumber,omitempty" validate:"omitempty,max=100"`
	InsuranceClaimNumber  *string        `json:"insuranceClaimNumber,omitempty" validate:"omitempty,max=100"`
	Metadata              map[string]any `json:"metadata,omitempty"`
}

type UpdateLeadRequest struct {
	FirstName             *string        `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName              *string        `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone                 *string        `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email                 *string        `json:"email,omitempty" validate:"omitempty,email"`
	AddressStreet         *string        `json:"addressStreet,omitempty" validate:"omitempty,min=1,max=200"`
	AddressCity           *string        `json:"addressCity,omitempty" validate:"omitempty,min=1,max=100"`
	AddressState          *string        `json:"addressState,omitempty" validate:"omitempty,min=2,max=50"`
	AddressZip            *string        `json:"addressZip,omitempty" validate:"omitempty,min=1,max=20"`
	AssignedToID          OptionalUUID   `json:"assignedToId,omitempty" validate:"-"`
	InsuranceCarrier      *string        `json:"insuranceCarrier,omitempty" validate:"omitempty,max=200"`
	InsurancePolicyNumber *string        `json:"insurancePolicyNumber,omitempty" validate:"omitempty,max=100"`
	InsuranceClaimNumber  *string        `json:"insuranceClaimNumber,omitempty" validate:"omitempty,max=100"`
	Metadata              map[string]any `json:"metadata,omitempty"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignLeadRequest struct {
	AssignedToID *uuid.UUID `json:"assignedToId"`
}

type AddNoteRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type RequestDeletionRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type ListLeadsRequest struct {
	Status       string `form:"status" validate:"omitempty,oneof=follow_ups signed_contract scheduled colors acv job completed_jobs zero_balance denied"`
	AssignedToID string `form:"assignedTo" validate:"omitempty,uuid"`
	Search       string `form:"search" validate:"max=100"`
	Page         int    `form:"page" validate:"min=0"`
	PageSize     int    `form:"pageSize" validate:"min=0,max=100"`
}

// Response DTOs

type AddressResponse struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type InsuranceResponse struct {
	Carrier      *string `json:"carrier,omitempty"`
	PolicyNumber *string `json:"policyNumber,omitempty"`
	ClaimNumber  *string `json:"claimNumber,omitempty"`
}

type LeadResponse struct {
	ID           uuid.UUID         `json:"id"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Phone        string            `json:"phone"`
	Email        *string           `json:"email,omitempty"`
	Address      AddressResponse   `json:"address"`
	Status       string            `json:"status"`
	StatusLabel  string            `json:"statusLabel"`
	AssignedToID *uuid.UUID        `json:"assignedToId,omitempty"`
	Insurance    InsuranceResponse `json:"insurance"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:        lead.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Phone:     lead.Phone,
		Email:     lead.Email,
		Address: AddressResponse{
			Street: lead.AddressStreet,
			City:   lead.AddressCity,
			State:  lead.AddressState,
			Zip:    lead.AddressZip,
		},
		Status:       string(lead.Status),
		StatusLabel:  lead.Status.Label(),
		AssignedToID: lead.AssignedToID,
		Insurance: InsuranceResponse{
			Carrier:      lead.InsuranceCarrier,
			PolicyNumber: lead.InsurancePolicyNumber,
			ClaimNumber:  lead.InsuranceClaimNumber,
		},
		Metadata:  lead.Metadata,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ActivityResponse struct {
	ID          int64     `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	UserID      uuid.UUID `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToActivityResponse(activity repository.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          activity.ID,
		LeadID:      activity.LeadID,
		Type:        string(activity.Type),
		Title:       activity.Title,
		Description: activity.Description,
		UserID:      activity.UserID,
		CreatedAt:   activity.CreatedAt,
	}
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}

type DeletionRequestResponse struct {
	ID               uuid.UUID  `json:"id"`
	LeadID           uuid.UUID  `json:"leadId"`
	LeadName         string     `json:"leadName"`
	LeadEmail        *string    `json:"leadEmail,omitempty"`
	LeadAddress      string     `json:"leadAddress"`
	LeadStatus       string     `json:"leadStatus"`
	LeadCreatedAt    time.Time  `json:"leadCreatedAt"`
	RequestedByID    uuid.UUID  `json:"requestedById"`
	RequestedByName  string     `json:"requestedByName"`
	RequestedByEmail string     `json:"requestedByEmail"`
	Reason           *string    `json:"reason,omitempty"`
	Status           string     `json:"status"`
	ResolvedByID     *uuid.UUID `json:"resolvedById,omitempty"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func ToDeletionRequestResponse(request repository.DeletionRequest) DeletionRequestResponse {
	return DeletionRequestResponse{
		ID:               request.ID,
		LeadID:           request.LeadID,
		LeadName:         request.LeadName,
		LeadEmail:        request.LeadEmail,
		LeadAddress:      request.LeadAddress,
		LeadStatus:       string(request.LeadStatus),
		LeadCreatedAt:    request.LeadCreatedAt,
		RequestedByID:    request.RequestedByID,
		RequestedByName:  request.RequestedByName,
		RequestedByEmail: request.RequestedByEmail,
		Reason:           request.Reason,
		Status:           string(request.Status),
		ResolvedByID:     request.ResolvedByID,
		ResolvedAt:       request.ResolvedAt,
		CreatedAt:        request.CreatedAt,
	}
}

type DeletionRequestListResponse struct {
	Items []DeletionRequestResponse `json:"items"`
}

type PipelineCountsResponse struct {
	Counts map[string]int `json:"counts"`
}
