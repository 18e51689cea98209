package util

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/deskhive/ticketing/internal/domain"
	"github.com/deskhive/ticketing/internal/locking"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "ticket not found",
			err:        &domain.NotFoundError{TicketID: "t-1"},
			wantCode:   "TICKET_NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "already assigned",
			err:        &domain.AlreadyAssignedError{AssigneeID: "agent-1"},
			wantCode:   "TICKET_ALREADY_ASSIGNED",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid operation",
			err:        &domain.InvalidOperationError{Reason: "cannot reopen a closed ticket"},
			wantCode:   "INVALID_OPERATION",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "concurrent modification",
			err:        domain.ErrConcurrentModification,
			wantCode:   "CONCURRENT_MODIFICATION",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "lock not acquired",
			err:        &locking.NotAcquiredError{Key: "ticket:lock:t-1", Wait: 5 * time.Second},
			wantCode:   "LOCK_NOT_ACQUIRED",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "interrupted lock wait",
			err:        errors.Join(locking.ErrInterrupted, context.Canceled),
			wantCode:   "OPERATION_INTERRUPTED",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing row",
			err:        pgx.ErrNoRows,
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error",
			err:        errors.New("disk on fire"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestToDomainError_PassesThroughDomainError(t *testing.T) {
	orig := NewValidationError("subject is required", map[string]any{"field": "subject"})
	got := ToDomainError(orig)
	if got.Code != "VALIDATION_FAILED" || got.HTTPStatus != http.StatusBadRequest {
		t.Errorf("got %q/%d, want VALIDATION_FAILED/400", got.Code, got.HTTPStatus)
	}
}

func TestToDomainError_Nil(t *testing.T) {
	if got := ToDomainError(nil); got != nil {
		t.Errorf("ToDomainError(nil) = %v, want nil", got)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	wrapped := NewInternalError(inner)
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped internal error should unwrap to the cause")
	}
}
