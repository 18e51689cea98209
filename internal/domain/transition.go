package domain

// ValidateTransition checks a requested status change against the lifecycle
// policy. Closed tickets are terminal, and open tickets must pass through
// RESOLVED before closing. Every other pair is allowed, including the
// identity transition.
func ValidateTransition(from, to TicketStatus) error {
	if from == TicketStatusClosed && to != TicketStatusClosed {
		return &InvalidOperationError{Reason: "cannot reopen a closed ticket; create a new ticket instead"}
	}
	if from == TicketStatusOpen && to == TicketStatusClosed {
		return &InvalidOperationError{Reason: "tickets must be resolved before closing"}
	}
	return nil
}
