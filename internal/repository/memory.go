package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deskhive/ticketing/internal/domain"
)

// MemoryTicketRepository is an in-process TicketRepository with the same
// version-check semantics as the Postgres one. It backs the database-less
// development mode and the concurrency tests. Records are copied on every
// read and write so no ticket state aliases across operation boundaries.
type MemoryTicketRepository struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository builds an empty in-memory store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.Version = 0
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket := cloneTicket(stored)
	return &ticket, nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	ticket.Version = stored.Version + 1
	ticket.CreatedAt = stored.CreatedAt
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *MemoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.AssigneeID != nil && (stored.AssigneeID == nil || *stored.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Unassigned && stored.AssigneeID != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(stored.Status, filter.Statuses) {
			continue
		}
		result = append(result, cloneTicket(stored))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func statusIn(status domain.TicketStatus, set []domain.TicketStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		t.AssigneeID = &assignee
	}
	return t
}

// MemoryAgentRepository is the in-process AgentRepository twin.
type MemoryAgentRepository struct {
	mu      sync.Mutex
	agents  map[string]domain.Agent
	byEmail map[string]string
}

// NewMemoryAgentRepository builds an empty in-memory agent store.
func NewMemoryAgentRepository() *MemoryAgentRepository {
	return &MemoryAgentRepository{
		agents:  make(map[string]domain.Agent),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryAgentRepository) Create(_ context.Context, agent *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	agent.ID = uuid.NewString()
	agent.CreatedAt = now
	agent.UpdatedAt = now
	r.agents[agent.ID] = *agent
	r.byEmail[agent.Email] = agent.ID
	return nil
}

func (r *MemoryAgentRepository) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

func (r *MemoryAgentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	r.mu.Lock()
	id, ok := r.byEmail[email]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}
