package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Seaside Cottage  ",
			want:  "Seaside Cottage",
		},
		{
			name:  "multiple spaces between words",
			input: "Seaside    Cottage",
			want:  "Seaside Cottage",
		},
		{
			name:  "tabs and newlines",
			input: "Seaside\t\nCottage",
			want:  "Seaside Cottage",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café del Mar™ ",
			want:  "Café del Mar™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain instructions untouched",
			input: "Lockbox behind the planter, code on the keypad.",
			want:  "Lockbox behind the planter, code on the keypad.",
		},
		{
			name:  "control characters stripped",
			input: "Gate code\x00 is 4455\x07",
			want:  "Gate code is 4455",
		},
		{
			name:  "newlines collapse to spaces",
			input: "Side entrance.\nRing twice.",
			want:  "Side entrance. Ring twice.",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFreeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
