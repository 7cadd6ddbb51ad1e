package model

import "time"

type PasscodeStatus string

const (
	PasscodePending PasscodeStatus = "pending"
	PasscodeActive  PasscodeStatus = "active"
	PasscodeExpired PasscodeStatus = "expired"
	PasscodeRevoked PasscodeStatus = "revoked"
)

type GenerationMethod string

const (
	MethodAuto   GenerationMethod = "auto"
	MethodManual GenerationMethod = "manual"
)

// VendorMetadata keeps the fields the revoke path reads as typed columns.
// Extra carries whatever else the vendor returned.
type VendorMetadata struct {
	DeviceID string            `json:"device_id" bson:"device_id"`
	CodeID   string            `json:"code_id" bson:"code_id"`
	Extra    map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}

type PasscodeEntry struct {
	ID             string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReservationID  string           `json:"reservation_id" bson:"reservation_id" validate:"required,mongodb"`
	PropertyID     string           `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	Code           *string          `json:"code,omitempty" bson:"code,omitempty"`
	ValidFrom      time.Time        `json:"valid_from" bson:"valid_from" validate:"required"`
	ValidUntil     time.Time        `json:"valid_until" bson:"valid_until" validate:"required,gtfield=ValidFrom"`
	Method         GenerationMethod `json:"method" bson:"method" validate:"required,oneof=auto manual"`
	Status         PasscodeStatus   `json:"status" bson:"status" validate:"required,oneof=pending active expired revoked"`
	Vendor         *VendorMetadata  `json:"vendor,omitempty" bson:"vendor,omitempty"`
	HostNotifiedAt *time.Time       `json:"host_notified_at,omitempty" bson:"host_notified_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time        `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Blocks reports whether this entry still occupies the reservation's slot.
// Only revoked entries free the slot for regeneration.
func (e *PasscodeEntry) Blocks() bool {
	return e.Status != PasscodeRevoked
}

func (e *PasscodeEntry) Usable(now time.Time) bool {
	if e.Status != PasscodeActive || e.Code == nil {
		return false
	}
	return !now.Before(e.ValidFrom) && now.Before(e.ValidUntil)
}
