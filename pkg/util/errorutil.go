package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/deskhive/ticketing/internal/domain"
	"github.com/deskhive/ticketing/internal/locking"
)

// DomainError standardizes application errors for HTTP translation.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts the closed set of ticket errors, plus generic
// failures, into DomainError for the HTTP error middleware. Lock timeouts
// and version conflicts both surface as 409 so callers retry or re-read;
// an interrupted lock wait surfaces as 503 since no mutation occurred.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return &DomainError{
			Code:       "TICKET_NOT_FOUND",
			Message:    notFound.Error(),
			HTTPStatus: http.StatusNotFound,
			Details:    map[string]any{"ticket_id": notFound.TicketID},
		}
	}

	var alreadyAssigned *domain.AlreadyAssignedError
	if errors.As(err, &alreadyAssigned) {
		return &DomainError{
			Code:       "TICKET_ALREADY_ASSIGNED",
			Message:    alreadyAssigned.Error(),
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"assignee_id": alreadyAssigned.AssigneeID},
		}
	}

	var invalidOp *domain.InvalidOperationError
	if errors.As(err, &invalidOp) {
		return &DomainError{
			Code:       "INVALID_OPERATION",
			Message:    invalidOp.Error(),
			HTTPStatus: http.StatusBadRequest,
		}
	}

	if errors.Is(err, domain.ErrConcurrentModification) {
		return &DomainError{
			Code:       "CONCURRENT_MODIFICATION",
			Message:    err.Error(),
			HTTPStatus: http.StatusConflict,
		}
	}

	var notAcquired *locking.NotAcquiredError
	if errors.As(err, &notAcquired) {
		return &DomainError{
			Code:       "LOCK_NOT_ACQUIRED",
			Message:    "ticket is busy; retry shortly",
			HTTPStatus: http.StatusConflict,
			Err:        err,
		}
	}

	if errors.Is(err, locking.ErrInterrupted) {
		return &DomainError{
			Code:       "OPERATION_INTERRUPTED",
			Message:    "operation interrupted before any change was made",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
