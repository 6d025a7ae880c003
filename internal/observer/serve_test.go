package observer

import (
	"net/http/httptest"
	"testing"
)

func TestCheckOriginAllowsEverythingByDefault(t *testing.T) {
	SetAllowedOrigins(nil)
	req := httptest.NewRequest("GET", "/call/transcript/abc", nil)
	req.Header.Set("Origin", "https://anything.example")
	if !checkOrigin(req) {
		t.Fatal("expected empty allowlist to permit any origin")
	}
}

func TestCheckOriginEnforcesAllowlist(t *testing.T) {
	SetAllowedOrigins([]string{"https://dashboard.example"})
	defer SetAllowedOrigins(nil)

	allowed := httptest.NewRequest("GET", "/call/transcript/abc", nil)
	allowed.Header.Set("Origin", "https://dashboard.example")
	if !checkOrigin(allowed) {
		t.Error("expected configured origin to be allowed")
	}

	denied := httptest.NewRequest("GET", "/call/transcript/abc", nil)
	denied.Header.Set("Origin", "https://evil.example")
	if checkOrigin(denied) {
		t.Error("expected unlisted origin to be denied")
	}
}
