package dto

import (
	"time"

	"github.com/deskhive/ticketing/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

// UpdateTicketRequest payload for field-only edits; nil fields are left
// untouched.
type UpdateTicketRequest struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
}

// AssignTicketRequest payload. AssigneeID defaults to the authenticated
// agent when omitted.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse mirrors the stored ticket, including the version callers
// echo back for optimistic writes.
type TicketResponse struct {
	ID          string              `json:"id"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	UserID      string              `json:"user_id"`
	AssigneeID  *string             `json:"assignee_id"`
	Version     int64               `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
