package locale

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// InferTimezoneFromPhone falls back to the host country's default timezone
// when a property has no timezone of its own.
func InferTimezoneFromPhone(phone string) string {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return DefaultTimezone
	}

	if parsed, err := phonenumbers.Parse(normalized, ""); err == nil {
		if region := phonenumbers.GetRegionCodeForNumber(parsed); region != "" {
			if country, ok := Countries[region]; ok {
				return country.DefaultTimezone
			}
			return DefaultTimezone
		}
	}

	// Numbers stored without the + sign, or ones the library cannot place,
	// still carry a recognizable country prefix.
	for _, country := range Countries {
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return country.DefaultTimezone
			}
		}
	}

	return DefaultTimezone
}
