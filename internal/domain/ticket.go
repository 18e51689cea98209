package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is one of the known states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Version is the optimistic
// concurrency token: it starts at 0 and the store increments it on every
// successful write. Callers never set it except by echoing back a
// previously read value.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Status      TicketStatus
	UserID      string
	AssigneeID  *string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assigned reports whether the ticket currently has an assignee.
func (t *Ticket) Assigned() bool {
	return t.AssigneeID != nil
}
