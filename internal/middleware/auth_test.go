package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ugcstudio/internal/domain/fault"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer  abc ", "abc"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := BearerToken(req); got != tc.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	resolve := func(token string) (string, error) {
		if token == "good" {
			return "user@example.com", nil
		}
		return "", &fault.Auth{Message: "invalid token"}
	}
	var seenEmail string
	handler := Auth(resolve)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No token: the request passes through anonymously.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous request = %d", rec.Code)
	}
	if seenEmail != "" {
		t.Fatalf("anonymous request leaked an account: %q", seenEmail)
	}

	// Valid token: the account lands in the context.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seenEmail != "user@example.com" {
		t.Fatalf("code = %d, email = %q", rec.Code, seenEmail)
	}

	// Invalid token: rejected before the handler runs.
	seenEmail = "untouched"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token = %d, want 401", rec.Code)
	}
	if seenEmail != "untouched" {
		t.Fatalf("handler ran despite the invalid token")
	}
}
