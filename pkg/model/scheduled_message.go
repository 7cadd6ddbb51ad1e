package model

import "time"

type ScheduledMessageStatus string

const (
	MessageScheduled ScheduledMessageStatus = "scheduled"
	MessageSent      ScheduledMessageStatus = "sent"
	MessageCancelled ScheduledMessageStatus = "cancelled"
	MessageFailed    ScheduledMessageStatus = "failed"
)

type ScheduledMessageEntry struct {
	ID            string                 `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TemplateID    string                 `json:"template_id" bson:"template_id" validate:"required,mongodb"`
	ReservationID string                 `json:"reservation_id" bson:"reservation_id" validate:"required,mongodb"`
	GuestID       string                 `json:"guest_id,omitempty" bson:"guest_id,omitempty" validate:"omitempty,mongodb"`
	ScheduledFor  time.Time              `json:"scheduled_for" bson:"scheduled_for" validate:"required"`
	Status        ScheduledMessageStatus `json:"status" bson:"status" validate:"required,oneof=scheduled sent cancelled failed"`
	Channels      []string               `json:"channels" bson:"channels" validate:"required,min=1,dive,oneof=sms email"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at" validate:"omitempty"`
}
