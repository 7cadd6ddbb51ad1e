package model

import "time"

type TriggerEvent string

const (
	TriggerVerification TriggerEvent = "verification"
	TriggerCheckIn      TriggerEvent = "check_in"
	TriggerCheckOut     TriggerEvent = "check_out"

	// TriggerNone marks templates hosts send by hand; the scheduler
	// never picks them up.
	TriggerNone TriggerEvent = "none"
)

type OffsetUnit string

const (
	UnitHours OffsetUnit = "hours"
	UnitDays  OffsetUnit = "days"
)

type OffsetDirection string

const (
	DirectionBefore OffsetDirection = "before"
	DirectionAfter  OffsetDirection = "after"
)

type TriggerOffset struct {
	Value     int             `json:"value" bson:"value" validate:"min=0"`
	Unit      OffsetUnit      `json:"unit" bson:"unit" validate:"required,oneof=hours days"`
	Direction OffsetDirection `json:"direction" bson:"direction" validate:"required,oneof=before after"`
}

func (o TriggerOffset) Duration() time.Duration {
	switch o.Unit {
	case UnitDays:
		return time.Duration(o.Value) * 24 * time.Hour
	default:
		return time.Duration(o.Value) * time.Hour
	}
}

type MessageTemplate struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Content      string        `json:"content" bson:"content" validate:"required,min=1,max=5000"`
	Channels     []string      `json:"channels" bson:"channels" validate:"required,min=1,dive,oneof=sms email"`
	TriggerEvent TriggerEvent  `json:"trigger_event" bson:"trigger_event" validate:"required,oneof=verification check_in check_out none"`
	Offset       TriggerOffset `json:"offset" bson:"offset"`
	Active       bool          `json:"active" bson:"active"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}
