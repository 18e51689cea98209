package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/deskhive/ticketing/internal/domain"
)

func TestMemoryTicketRepository_CreateAssignsIDAndVersionZero(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ticket := &domain.Ticket{
		Subject: "printer on fire",
		Status:  domain.TicketStatusOpen,
		UserID:  "user-1",
	}

	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ticket.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if ticket.Version != 0 {
		t.Errorf("Version = %d, want 0", ticket.Version)
	}
	if ticket.CreatedAt.IsZero() || ticket.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestMemoryTicketRepository_UpdateVersionCheck(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{Subject: "subj", Status: domain.TicketStatusOpen, UserID: "user-1"}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Write with the version just read succeeds and bumps.
	ticket.Subject = "updated"
	if err := repo.Update(ctx, ticket, 0); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if ticket.Version != 1 {
		t.Errorf("Version after update = %d, want 1", ticket.Version)
	}

	// A stale expected version is rejected and mutates nothing.
	stale := *ticket
	stale.Subject = "should not land"
	if err := repo.Update(ctx, &stale, 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("Update() with stale version error = %v, want ErrVersionConflict", err)
	}

	stored, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Subject != "updated" {
		t.Errorf("Subject = %q, want %q", stored.Subject, "updated")
	}
	if stored.Version != 1 {
		t.Errorf("Version = %d, want 1", stored.Version)
	}
}

func TestMemoryTicketRepository_GetMissing(t *testing.T) {
	repo := NewMemoryTicketRepository()
	if _, err := repo.GetByID(context.Background(), "no-such-id"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("GetByID() error = %v, want pgx.ErrNoRows", err)
	}
}

func TestMemoryTicketRepository_ReadsDoNotAliasStore(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{Subject: "subj", Status: domain.TicketStatusOpen, UserID: "user-1"}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	read, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	read.Subject = "mutated locally"

	again, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if again.Subject != "subj" {
		t.Errorf("local mutation leaked into the store: Subject = %q", again.Subject)
	}
}

func TestMemoryTicketRepository_ListFilters(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	agent := "agent-1"
	assigned := &domain.Ticket{Subject: "a", Status: domain.TicketStatusInProgress, UserID: "u", AssigneeID: &agent}
	unassigned := &domain.Ticket{Subject: "b", Status: domain.TicketStatusOpen, UserID: "u"}
	for _, ticket := range []*domain.Ticket{assigned, unassigned} {
		if err := repo.Create(ctx, ticket); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	byAssignee, err := repo.List(ctx, TicketFilter{AssigneeID: &agent})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byAssignee) != 1 || byAssignee[0].ID != assigned.ID {
		t.Errorf("List by assignee returned %d tickets, want the assigned one", len(byAssignee))
	}

	free, err := repo.List(ctx, TicketFilter{Unassigned: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(free) != 1 || free[0].ID != unassigned.ID {
		t.Errorf("List unassigned returned %d tickets, want the unassigned one", len(free))
	}

	open, err := repo.List(ctx, TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(open) != 1 || open[0].Status != domain.TicketStatusOpen {
		t.Errorf("List by status returned %d tickets, want 1 open", len(open))
	}
}

func TestMemoryAgentRepository_Roundtrip(t *testing.T) {
	repo := NewMemoryAgentRepository()
	ctx := context.Background()

	agent := &domain.Agent{Name: "Sam", Email: "sam@example.com", PasswordHash: "x"}
	if err := repo.Create(ctx, agent); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byID, err := repo.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "sam@example.com" {
		t.Errorf("Email = %q, want %q", byID.Email, "sam@example.com")
	}

	byEmail, err := repo.GetByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != agent.ID {
		t.Errorf("GetByEmail ID = %q, want %q", byEmail.ID, agent.ID)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("GetByEmail() missing error = %v, want pgx.ErrNoRows", err)
	}
}
