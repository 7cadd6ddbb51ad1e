package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions we operate rentals in. National-format numbers are tried against
// each in order; international (+...) input parses regardless of region.
var supportedRegions = []string{
	"US",
	"CA",
	"MX",
	"GB",
	"IE",
	"ES",
	"PT",
	"FR",
	"IT",
	"GR",
	"HR",
	"IL",
	"AU",
	"NZ",
}

// NormalizePhone returns the E.164 form of phone, or "" when the number is
// not valid in any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
