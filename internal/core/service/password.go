package service

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/identikit/identity-api/internal/core/domain"
)

// Hasher wraps bcrypt with a tunable cost factor.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. A cost outside bcrypt's valid range falls
// back to bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash derives a salted one-way digest of plaintext. Hashing an empty
// plaintext is a caller bug: "no password supplied" must be decided
// upstream, never stored as a hash of "".
func (h Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("refusing to hash an empty password")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. bcrypt compares in
// constant time; an empty digest never matches anything.
func (h Hasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// BreachChecker reports whether a password appears in a known-compromised
// corpus. Lookups are pure and safe for concurrent use.
type BreachChecker interface {
	IsCompromised(password string) bool
}

// PolicyConfig carries the knobs for password acceptance.
type PolicyConfig struct {
	MinLength int
	// PasswordlessRegistration accepts an empty password, leaving the
	// account without a credential.
	PasswordlessRegistration bool
	BreachCheck              bool
	// CharsetPattern, when non-nil, must match the whole password.
	CharsetPattern *regexp.Regexp
}

// Policy validates candidate passwords. Rules run in a fixed order and the
// first failure wins, so the expensive breach lookup only happens for
// passwords that already pass the cheap checks.
type Policy struct {
	cfg    PolicyConfig
	breach BreachChecker
}

// NewPolicy builds a Policy. breach may be nil when cfg.BreachCheck is off.
func NewPolicy(cfg PolicyConfig, breach BreachChecker) Policy {
	return Policy{cfg: cfg, breach: breach}
}

// Validate accepts or rejects a candidate password. Rejections are
// *domain.PolicyError values carrying a machine-checkable reason.
func (p Policy) Validate(password string) error {
	if password == "" {
		if p.cfg.PasswordlessRegistration {
			return nil
		}
		return &domain.PolicyError{Reason: domain.ReasonEmpty}
	}

	if len(password) < p.cfg.MinLength {
		return &domain.PolicyError{Reason: domain.ReasonTooShort}
	}

	if p.cfg.CharsetPattern != nil && !p.cfg.CharsetPattern.MatchString(password) {
		return &domain.PolicyError{Reason: domain.ReasonForbiddenChars}
	}

	if p.cfg.BreachCheck && p.breach != nil && p.breach.IsCompromised(password) {
		return &domain.PolicyError{Reason: domain.ReasonCompromised}
	}

	return nil
}
