package model

import (
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationBlocked   ReservationStatus = "blocked"
	ReservationCheckedIn ReservationStatus = "checked_in"
)

// Reservation is owned by the booking platform; this service only reads it.
type Reservation struct {
	ID         string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string            `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	GuestID    string            `json:"guest_id" bson:"guest_id" validate:"required,mongodb"`
	GuestName  string            `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	CheckIn    time.Time         `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time         `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Status     ReservationStatus `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled blocked checked_in"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (r *Reservation) Cancelled() bool {
	return r.Status == ReservationCancelled
}

// GenerationEligible reports whether the stay can receive a passcode at all.
// Blocked calendar entries have no guest and cancelled stays never get one.
func (r *Reservation) GenerationEligible() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationCheckedIn
}
