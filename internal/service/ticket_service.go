package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/deskhive/ticketing/internal/domain"
	"github.com/deskhive/ticketing/internal/events"
	"github.com/deskhive/ticketing/internal/locking"
	"github.com/deskhive/ticketing/internal/repository"
)

const lockKeyPrefix = "ticket:lock:"

// TicketService coordinates ticket workflows. Operations with cross-field
// business rules (assign, unassign, status updates) run inside a
// per-ticket distributed lock; field-only edits take the lock-free
// optimistic path and rely on the store's version check alone. The two
// layers are deliberately independent: the lease can expire mid critical
// section, and the version check is the last line of defense against that
// race.
type TicketService struct {
	tickets    repository.TicketRepository
	locker     locking.Locker
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Locker     locking.Locker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	AssigneeID *string
	Unassigned bool
	Statuses   []domain.TicketStatus
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create creates a ticket. No lock is needed: the row is fresh and has no
// contender.
func (s *TicketService) Create(ctx context.Context, userID, subject, description string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Subject:     strings.TrimSpace(subject),
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusOpen,
		UserID:      userID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.String("user_id", userID))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			UserID:  ticket.UserID,
			Subject: ticket.Subject,
		},
	})
	return ticket, nil
}

// Get fetches a ticket by ID.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketReadError(err, ticketID)
	}
	return ticket, nil
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{
		AssigneeID: filter.AssigneeID,
		Unassigned: filter.Unassigned,
		Statuses:   filter.Statuses,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// UpdateFields edits subject and/or description on the optimistic path:
// read, apply, write with the version just read. Under contention the last
// writer loses cleanly with ErrConcurrentModification and is expected to
// re-read and resubmit; there is no retry here. A call with neither field
// set still writes and bumps the version.
func (s *TicketService) UpdateFields(ctx context.Context, ticketID string, subject, description *string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketReadError(err, ticketID)
	}

	expected := ticket.Version
	if subject != nil {
		ticket.Subject = strings.TrimSpace(*subject)
	}
	if description != nil {
		ticket.Description = strings.TrimSpace(*description)
	}

	if err := s.tickets.Update(ctx, ticket, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Warn("optimistic update conflict", zap.String("ticket_id", ticketID), zap.Int64("expected_version", expected))
			return nil, domain.ErrConcurrentModification
		}
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload:  events.TicketUpdatedPayload{Version: ticket.Version},
	})
	return ticket, nil
}

// Assign claims the ticket for an agent. Exactly one of any set of
// concurrent claimers wins; the rest fail with AlreadyAssignedError or a
// lock timeout. Assignment moves the ticket to IN_PROGRESS.
func (s *TicketService) Assign(ctx context.Context, ticketID, assigneeID string) (*domain.Ticket, error) {
	s.logger.Info("assigning ticket", zap.String("ticket_id", ticketID), zap.String("assignee_id", assigneeID))

	ticket, err := s.withTicketLock(ctx, ticketID, func(t *domain.Ticket) error {
		if t.AssigneeID != nil {
			return &domain.AlreadyAssignedError{AssigneeID: *t.AssigneeID}
		}
		if t.Status == domain.TicketStatusClosed {
			return &domain.InvalidOperationError{Reason: "cannot assign a closed ticket"}
		}
		t.AssigneeID = &assigneeID
		t.Status = domain.TicketStatusInProgress
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// Unassign releases the ticket back to the pool. An in-progress ticket
// returns to OPEN; resolved tickets keep their status. Closed tickets are
// immutable.
func (s *TicketService) Unassign(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	s.logger.Info("unassigning ticket", zap.String("ticket_id", ticketID))

	ticket, err := s.withTicketLock(ctx, ticketID, func(t *domain.Ticket) error {
		if t.Status == domain.TicketStatusClosed {
			return &domain.InvalidOperationError{Reason: "cannot unassign a closed ticket"}
		}
		if t.AssigneeID == nil {
			return &domain.InvalidOperationError{Reason: "ticket is not assigned"}
		}
		t.AssigneeID = nil
		if t.Status == domain.TicketStatusInProgress {
			t.Status = domain.TicketStatusOpen
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUnassigned,
		TicketID: ticket.ID,
	})
	return ticket, nil
}

// UpdateStatus transitions the ticket status under the per-ticket lock.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if !next.Valid() {
		return nil, &domain.InvalidOperationError{Reason: "unknown status: " + string(next)}
	}
	s.logger.Info("updating ticket status", zap.String("ticket_id", ticketID), zap.String("status", string(next)))

	var old domain.TicketStatus
	ticket, err := s.withTicketLock(ctx, ticketID, func(t *domain.Ticket) error {
		old = t.Status
		if err := domain.ValidateTransition(t.Status, next); err != nil {
			return err
		}
		t.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// withTicketLock runs one critical section: acquire the per-ticket lock,
// re-read fresh state, apply the mutation, persist with the version read
// inside the section. The previously cached copy is never trusted; the
// lock only protects the window between this read and the write. Release
// is deferred so every exit path, including business-rule rejections and
// cancellation, frees the lock.
func (s *TicketService) withTicketLock(ctx context.Context, ticketID string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	lease, err := s.locker.Acquire(ctx, lockKeyPrefix+ticketID)
	if err != nil {
		if errors.Is(err, locking.ErrInterrupted) {
			s.logger.Warn("lock wait interrupted", zap.String("ticket_id", ticketID))
		} else {
			s.logger.Warn("lock acquisition failed", zap.String("ticket_id", ticketID), zap.Error(err))
		}
		return nil, err
	}
	defer s.locker.Release(ctx, lease)

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketReadError(err, ticketID)
	}

	expected := ticket.Version
	if err := mutate(ticket); err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, ticket, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			// Should be impossible while the lock is held; defends
			// against an expired lease or a writer bypassing the lock.
			s.logger.Error("version conflict inside critical section", zap.String("ticket_id", ticketID))
			return nil, domain.ErrConcurrentModification
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapTicketReadError(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{TicketID: ticketID}
	}
	return err
}
