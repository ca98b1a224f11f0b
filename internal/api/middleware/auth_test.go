package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubVerifier struct {
	userID string
	err    error
	seen   string
}

func (s *stubVerifier) VerifySessionToken(token string) (string, error) {
	s.seen = token
	return s.userID, s.err
}

func callAuth(t *testing.T, verifier *stubVerifier, header string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Auth(verifier)(next)(c)
	return rec, c, err
}

func TestAuth_ValidToken(t *testing.T) {
	verifier := &stubVerifier{userID: "u1"}

	rec, c, err := callAuth(t, verifier, "Bearer some.session.token")
	if err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.seen != "some.session.token" {
		t.Fatalf("verifier saw %q", verifier.seen)
	}
	if got, _ := c.Get("user_id").(string); got != "u1" {
		t.Fatalf("user_id not injected, got %q", got)
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	if _, _, err := callAuth(t, &stubVerifier{userID: "u1"}, "bearer tok"); err != nil {
		t.Fatalf("lowercase scheme rejected: %v", err)
	}
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
	}{
		{"missing header", "", &stubVerifier{}},
		{"wrong scheme", "Basic dXNlcjpwYXNz", &stubVerifier{}},
		{"no token part", "Bearer", &stubVerifier{}},
		{"verifier rejects", "Bearer bad", &stubVerifier{err: errors.New("invalid")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := callAuth(t, tt.verifier, tt.header)
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", he.Code)
			}
		})
	}
}
