package service

import (
	"errors"
	"testing"
	"time"

	"github.com/identikit/identity-api/internal/core/domain"
)

const testSecret = "unit-test-secret-key-0123456789abcdef"

// newTestTokens returns a token service pinned to a controllable clock.
// Move *clock forward to cross expiry boundaries without sleeping.
func newTestTokens(cfg TokenConfig) (*tokenService, *time.Time) {
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc := NewTokenService(cfg).(*tokenService)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc, _ := newTestTokens(TokenConfig{})

	token, err := svc.IssueSessionToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := svc.VerifySessionToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-42" {
		t.Fatalf("expected subject user-42, got %q", subject)
	}
}

func TestSessionToken_ExpiresAfterTTL(t *testing.T) {
	svc, clock := newTestTokens(TokenConfig{SessionTTL: time.Hour})

	token, err := svc.IssueSessionToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	*clock = clock.Add(2 * time.Hour)
	if _, err := svc.VerifySessionToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestSessionToken_WrongSecretFailsIdentically(t *testing.T) {
	issuer, _ := newTestTokens(TokenConfig{})
	verifier, _ := newTestTokens(TokenConfig{Secret: "a-completely-different-secret-value"})

	token, err := issuer.IssueSessionToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.VerifySessionToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

// Forged, malformed and expired all collapse into the same error value so
// a caller cannot tell them apart.
func TestOpen_SingleInvalidOutcome(t *testing.T) {
	svc, clock := newTestTokens(TokenConfig{SessionTTL: time.Minute})

	expired, err := svc.IssueSessionToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	*clock = clock.Add(time.Hour)

	for name, token := range map[string]string{
		"malformed": "not.a.token",
		"empty":     "",
		"expired":   expired,
	} {
		if _, err := svc.VerifySessionToken(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestToken_AnyBitFlipInvalidates(t *testing.T) {
	svc, _ := newTestTokens(TokenConfig{})

	token, err := svc.IssueSessionToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	raw := []byte(token)
	for i := 0; i < len(raw); i++ {
		if raw[i] == '.' {
			continue
		}
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i] ^= 0x04

		if _, err := svc.VerifySessionToken(string(flipped)); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("bit flip at byte %d still verified", i)
		}
	}
}

func TestPasswordResetToken_Scenario(t *testing.T) {
	svc, clock := newTestTokens(TokenConfig{ResetTTL: 48 * time.Hour})

	token, err := svc.IssuePasswordResetToken("a@x.test")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	email, err := svc.VerifyPasswordResetToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "a@x.test" {
		t.Fatalf("expected subject a@x.test, got %q", email)
	}

	*clock = clock.Add(49 * time.Hour)
	if _, err := svc.VerifyPasswordResetToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after 49h, got %v", err)
	}
}

func TestEmailChangeToken_CarriesBothAddresses(t *testing.T) {
	svc, _ := newTestTokens(TokenConfig{})

	token, err := svc.IssueEmailChangeToken("a@x.test", "b@x.test")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	current, next, err := svc.VerifyEmailChangeToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if current != "a@x.test" || next != "b@x.test" {
		t.Fatalf("expected (a@x.test, b@x.test), got (%q, %q)", current, next)
	}
}

// A reset token has no payload claim, so it can never pass for an
// email-change token.
func TestEmailChangeToken_RejectsOtherKinds(t *testing.T) {
	svc, _ := newTestTokens(TokenConfig{})

	reset, err := svc.IssuePasswordResetToken("a@x.test")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := svc.VerifyEmailChangeToken(reset); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
