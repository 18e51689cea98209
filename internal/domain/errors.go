package domain

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification indicates a write lost the optimistic version
// check: the stored row advanced past the version the caller read. The
// caller must re-read and resubmit; the operation performed no mutation.
var ErrConcurrentModification = errors.New("ticket was modified concurrently; re-read and retry")

// NotFoundError reports an unknown ticket ID.
type NotFoundError struct {
	TicketID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ticket %s not found", e.TicketID)
}

// AlreadyAssignedError rejects a claim on a ticket that already has an
// assignee. It carries the current assignee so the caller can report who
// won.
type AlreadyAssignedError struct {
	AssigneeID string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("ticket already assigned to %s", e.AssigneeID)
}

// InvalidOperationError rejects an operation that violates a business rule,
// such as assigning a closed ticket or an illegal status transition.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}
