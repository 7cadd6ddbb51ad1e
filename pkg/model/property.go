package model

import "time"

// AccessMode is the per-property door access strategy. The set is closed:
// services switch over it exhaustively and reject anything else.
type AccessMode string

const (
	AccessVendorLock  AccessMode = "vendor_lock"
	AccessManual      AccessMode = "manual"
	AccessTraditional AccessMode = "traditional"
)

func (m AccessMode) Valid() bool {
	switch m {
	case AccessVendorLock, AccessManual, AccessTraditional:
		return true
	}
	return false
}

type AccessConfig struct {
	Mode         AccessMode `json:"mode" bson:"mode" validate:"required,oneof=vendor_lock manual traditional"`
	Instructions string     `json:"instructions,omitempty" bson:"instructions" validate:"omitempty,max=2000"`
	DeviceIDs    []string   `json:"device_ids,omitempty" bson:"device_ids" validate:"omitempty,dive,required"`
}

// Property is owned by the listings platform; this service only reads it.
type Property struct {
	ID        string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address   string       `json:"address" bson:"address" validate:"required,min=2,max=200"`
	TimeZone  string       `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	HostName  string       `json:"host_name" bson:"host_name" validate:"required,min=2,max=100"`
	HostPhone string       `json:"host_phone" bson:"host_phone" validate:"required,e164"`
	Access    AccessConfig `json:"access" bson:"access" validate:"required"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}
