package validator

import (
	"strings"
	"testing"

	"stayops/pkg/logger"
	"stayops/pkg/model"
)

func newTestValidator() *MessagingValidator {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewMessagingValidator(log)
}

func TestValidateEvent(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		event     string
		want      model.TriggerEvent
		wantError bool
	}{
		{name: "verification", event: "verification", want: model.TriggerVerification},
		{name: "check in", event: "check_in", want: model.TriggerCheckIn},
		{name: "check out", event: "check_out", want: model.TriggerCheckOut},
		{name: "uppercase normalized", event: "CHECK_IN", want: model.TriggerCheckIn},
		{name: "surrounding whitespace", event: "  check_out  ", want: model.TriggerCheckOut},
		{name: "empty", event: "", wantError: true},
		{name: "unknown event", event: "checkout_party", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateEvent(&EventRequest{Event: tt.event})
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error for event %q", tt.event)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for event %q: %v", tt.event, err)
				return
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateRender(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name          string
		reservationID string
		content       string
		wantError     bool
	}{
		{
			name:          "valid request",
			reservationID: "665f1f77bcf86cd799439011",
			content:       "Hi {{guest_name}}!",
		},
		{
			name:          "invalid reservation id",
			reservationID: "not-a-hex-id",
			content:       "Hi there",
			wantError:     true,
		},
		{
			name:          "missing content",
			reservationID: "665f1f77bcf86cd799439011",
			content:       "",
			wantError:     true,
		},
		{
			name:          "content too long",
			reservationID: "665f1f77bcf86cd799439011",
			content:       strings.Repeat("a", 5001),
			wantError:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &RenderRequest{ReservationID: tt.reservationID, Content: tt.content}
			err := v.ValidateRender(req)
			if tt.wantError && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRenderStripsControlCharacters(t *testing.T) {
	v := newTestValidator()

	req := &RenderRequest{
		ReservationID: "665f1f77bcf86cd799439011",
		Content:       "Hi\x00 {{guest_name}}\a!",
	}
	if err := v.ValidateRender(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsRune(req.Content, '\x00') || strings.ContainsRune(req.Content, '\a') {
		t.Errorf("expected control characters stripped, got %q", req.Content)
	}
}
