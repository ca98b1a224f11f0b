package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// TokenConfig carries the process-wide signing material and lifetimes.
// The algorithm is fixed to HS256; it is configuration, never negotiated
// per token.
type TokenConfig struct {
	Secret         string
	SessionTTL     time.Duration
	ResetTTL       time.Duration
	EmailChangeTTL time.Duration
}

const (
	defaultSessionTTL     = 8 * 24 * time.Hour
	defaultResetTTL       = 48 * time.Hour
	defaultEmailChangeTTL = 48 * time.Hour
)

// tokenService implements ports.TokenService on top of a single signed
// claim codec. The three kinds differ only in claim shape and TTL.
type tokenService struct {
	secret         []byte
	sessionTTL     time.Duration
	resetTTL       time.Duration
	emailChangeTTL time.Duration

	// now is injectable so tests can cross expiry boundaries without
	// sleeping. It feeds both issued claims and parser validation.
	now func() time.Time
}

// NewTokenService returns a ports.TokenService signing with HS256.
func NewTokenService(cfg TokenConfig) ports.TokenService {
	svc := &tokenService{
		secret:         []byte(cfg.Secret),
		sessionTTL:     cfg.SessionTTL,
		resetTTL:       cfg.ResetTTL,
		emailChangeTTL: cfg.EmailChangeTTL,
		now:            time.Now,
	}
	if svc.sessionTTL <= 0 {
		svc.sessionTTL = defaultSessionTTL
	}
	if svc.resetTTL <= 0 {
		svc.resetTTL = defaultResetTTL
	}
	if svc.emailChangeTTL <= 0 {
		svc.emailChangeTTL = defaultEmailChangeTTL
	}
	return svc
}

// sign encodes {sub, nbf, iat, exp} plus any extra claims.
func (s *tokenService) sign(subject string, ttl time.Duration, extra jwt.MapClaims) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": subject,
		"nbf": now.Unix(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// open decodes and validates a token. Bad signature, malformed input and
// passed expiry all collapse into domain.ErrInvalidToken so the error
// cannot be used as an oracle.
func (s *tokenService) open(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *tokenService) IssueSessionToken(userID string) (string, error) {
	return s.sign(userID, s.sessionTTL, nil)
}

func (s *tokenService) VerifySessionToken(token string) (string, error) {
	claims, err := s.open(token)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

func (s *tokenService) IssuePasswordResetToken(email string) (string, error) {
	return s.sign(email, s.resetTTL, nil)
}

func (s *tokenService) VerifyPasswordResetToken(token string) (string, error) {
	claims, err := s.open(token)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

func (s *tokenService) IssueEmailChangeToken(currentEmail, newEmail string) (string, error) {
	return s.sign(currentEmail, s.emailChangeTTL, jwt.MapClaims{"email": newEmail})
}

func (s *tokenService) VerifyEmailChangeToken(token string) (string, string, error) {
	claims, err := s.open(token)
	if err != nil {
		return "", "", err
	}
	sub, _ := claims["sub"].(string)
	newEmail, _ := claims["email"].(string)
	if sub == "" || newEmail == "" {
		return "", "", domain.ErrInvalidToken
	}
	return sub, newEmail, nil
}
