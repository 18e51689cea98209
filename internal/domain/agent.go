package domain

import "time"

// Agent is a support agent who can claim tickets. Tickets reference agents
// by ID string only; the locking core never joins against this table.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
