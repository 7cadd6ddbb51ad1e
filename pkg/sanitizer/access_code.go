package sanitizer

import (
	"regexp"
	"strings"
)

var reNonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizeAccessCode keeps digits only; lock keypads accept nothing else.
func NormalizeAccessCode(code string) string {
	return reNonDigits.ReplaceAllString(strings.TrimSpace(code), "")
}
