package locale

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "US", "ES")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // Phone number prefixes (e.g., ["+34", "34"])
	DefaultTimezone string   // IANA timezone identifier (e.g., "Europe/Madrid")
}

// Countries covers the markets we host rentals in. Prefixes must not overlap
// across entries; map iteration order is not defined.
var Countries = map[string]Country{
	"US": {
		Code:            "US",
		Name:            "United States",
		PhonePrefixes:   []string{"+1", "1"},
		DefaultTimezone: "America/New_York",
	},
	"MX": {
		Code:            "MX",
		Name:            "Mexico",
		PhonePrefixes:   []string{"+52", "52"},
		DefaultTimezone: "America/Mexico_City",
	},
	"GB": {
		Code:            "GB",
		Name:            "United Kingdom",
		PhonePrefixes:   []string{"+44", "44"},
		DefaultTimezone: "Europe/London",
	},
	"IE": {
		Code:            "IE",
		Name:            "Ireland",
		PhonePrefixes:   []string{"+353", "353"},
		DefaultTimezone: "Europe/Dublin",
	},
	"ES": {
		Code:            "ES",
		Name:            "Spain",
		PhonePrefixes:   []string{"+34", "34"},
		DefaultTimezone: "Europe/Madrid",
	},
	"PT": {
		Code:            "PT",
		Name:            "Portugal",
		PhonePrefixes:   []string{"+351", "351"},
		DefaultTimezone: "Europe/Lisbon",
	},
	"FR": {
		Code:            "FR",
		Name:            "France",
		PhonePrefixes:   []string{"+33", "33"},
		DefaultTimezone: "Europe/Paris",
	},
	"IT": {
		Code:            "IT",
		Name:            "Italy",
		PhonePrefixes:   []string{"+39", "39"},
		DefaultTimezone: "Europe/Rome",
	},
	"GR": {
		Code:            "GR",
		Name:            "Greece",
		PhonePrefixes:   []string{"+30", "30"},
		DefaultTimezone: "Europe/Athens",
	},
	"HR": {
		Code:            "HR",
		Name:            "Croatia",
		PhonePrefixes:   []string{"+385", "385"},
		DefaultTimezone: "Europe/Zagreb",
	},
	"IL": {
		Code:            "IL",
		Name:            "Israel",
		PhonePrefixes:   []string{"+972", "972"},
		DefaultTimezone: "Asia/Jerusalem",
	},
	"AU": {
		Code:            "AU",
		Name:            "Australia",
		PhonePrefixes:   []string{"+61", "61"},
		DefaultTimezone: "Australia/Sydney",
	},
	"NZ": {
		Code:            "NZ",
		Name:            "New Zealand",
		PhonePrefixes:   []string{"+64", "64"},
		DefaultTimezone: "Pacific/Auckland",
	},
}
