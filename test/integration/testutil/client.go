package testutil

import (
	"testing"

	"stayops/pkg/client"
)

// AssertStatusCode fails the test if status code doesn't match
func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

// AssertContains fails if response body doesn't contain substring
func AssertContains(t *testing.T, resp *client.Response, substr string) {
	t.Helper()
	body := string(resp.Body)
	if !contains(body, substr) {
		t.Fatalf("response body does not contain %q. Body: %s", substr, body)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstring(s, substr)))
}

func containsSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// PrintResponse prints response for debugging
func PrintResponse(t *testing.T, resp *client.Response) {
	t.Helper()
	t.Logf("Status: %d", resp.StatusCode)
	t.Logf("Body: %s", string(resp.Body))
	t.Logf("Headers: %v", resp.Header)
}
