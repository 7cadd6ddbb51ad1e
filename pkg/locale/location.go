package locale

import "time"

// ResolveLocation picks the timezone guest-facing times render in: the
// property's own setting when present, otherwise one inferred from the host
// phone number, otherwise UTC.
func ResolveLocation(timezone, hostPhone string) *time.Location {
	if timezone == "" {
		timezone = InferTimezoneFromPhone(hostPhone)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
