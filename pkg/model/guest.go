package model

import "time"

// Guest is owned by the booking platform; this service only reads it.
type Guest struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id" validate:"required,mongodb"`
	FullName      string    `json:"full_name" bson:"full_name" validate:"required,min=2,max=100"`
	Phone         string    `json:"phone,omitempty" bson:"phone" validate:"omitempty,e164"`
	Email         string    `json:"email,omitempty" bson:"email" validate:"omitempty,email"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
