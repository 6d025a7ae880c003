package control

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireBearerRejectsMissingAndWrongToken(t *testing.T) {
	called := false
	handler := requireBearer("s3cret", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/call/initiate", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Fatal("handler should not run without a token")
	}

	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireBearerAcceptsCorrectToken(t *testing.T) {
	called := false
	handler := requireBearer("s3cret", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/call/initiate", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("expected handler to run with correct token")
	}
}

func TestRequireBearerSkipsAuthWhenSecretEmpty(t *testing.T) {
	called := false
	handler := requireBearer("", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/call/initiate", nil)
	handler(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected handler to run when no secret is configured")
	}
}
