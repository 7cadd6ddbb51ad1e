package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// stripControl drops control characters but keeps whitespace, so newlines
// still collapse to single spaces further down the pipeline.
func stripControl(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeFreeText cleans operator-entered text, such as door instructions,
// before it is embedded in outgoing messages.
func NormalizeFreeText(s string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
	}
	return p.Apply(s)
}

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeChannels(channels []string) []string {
	return NormalizeStringSlice(channels, func(s string) string {
		return strings.ToLower(TrimAndNormalize(s))
	})
}

func NormalizeDeviceIDs(ids []string) []string {
	return NormalizeStringSlice(ids, TrimAndNormalize)
}
