package domain

import "testing"

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		wantErr bool
	}{
		{"closed to open rejected", TicketStatusClosed, TicketStatusOpen, true},
		{"closed to resolved rejected", TicketStatusClosed, TicketStatusResolved, true},
		{"closed to in_progress rejected", TicketStatusClosed, TicketStatusInProgress, true},
		{"open to closed rejected", TicketStatusOpen, TicketStatusClosed, true},
		{"open to in_progress accepted", TicketStatusOpen, TicketStatusInProgress, false},
		{"open to resolved accepted", TicketStatusOpen, TicketStatusResolved, false},
		{"in_progress to resolved accepted", TicketStatusInProgress, TicketStatusResolved, false},
		{"in_progress to open accepted", TicketStatusInProgress, TicketStatusOpen, false},
		{"resolved to closed accepted", TicketStatusResolved, TicketStatusClosed, false},
		{"resolved to in_progress accepted", TicketStatusResolved, TicketStatusInProgress, false},
		{"closed identity accepted", TicketStatusClosed, TicketStatusClosed, false},
		{"open identity accepted", TicketStatusOpen, TicketStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateTransition(%s, %s) = nil, want error", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateTransition(%s, %s) = %v, want nil", tt.from, tt.to, err)
			}
		})
	}
}

func TestValidateTransition_RejectionType(t *testing.T) {
	err := ValidateTransition(TicketStatusClosed, TicketStatusOpen)
	if _, ok := err.(*InvalidOperationError); !ok {
		t.Fatalf("expected *InvalidOperationError, got %T", err)
	}
}

func TestTicketStatusValid(t *testing.T) {
	for _, status := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed} {
		if !status.Valid() {
			t.Errorf("status %s should be valid", status)
		}
	}
	if TicketStatus("ARCHIVED").Valid() {
		t.Error("unknown status should not be valid")
	}
}
