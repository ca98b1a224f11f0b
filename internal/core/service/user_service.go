package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// Notifier abstracts the outbound mail sender (SMTP in production). The
// service only renders the token, link or passphrase into plain text;
// template engines stay out of the core.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// RecoveryThrottle bounds how often recovery mail goes out per address
// (Redis in production).
type RecoveryThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// UserServiceConfig carries the orchestration knobs.
type UserServiceConfig struct {
	ProjectName     string
	FrontendHost    string
	TempPasswordTTL time.Duration
}

const defaultTempPasswordTTL = time.Hour

type userService struct {
	repo        ports.UserRepository
	tokens      ports.TokenService
	hasher      Hasher
	policy      Policy
	passphrases *PassphraseGenerator
	notifier    Notifier
	throttle    RecoveryThrottle
	cfg         UserServiceConfig
	log         zerolog.Logger

	// now is injectable so expiry paths are testable without sleeping.
	now func() time.Time
}

// NewUserService wires the credential state machine. notifier and throttle
// may be nil in tests; recovery and registration mail become no-ops then.
func NewUserService(
	repo ports.UserRepository,
	tokens ports.TokenService,
	hasher Hasher,
	policy Policy,
	passphrases *PassphraseGenerator,
	notifier Notifier,
	throttle RecoveryThrottle,
	cfg UserServiceConfig,
	log zerolog.Logger,
) ports.UserService {
	if cfg.TempPasswordTTL <= 0 {
		cfg.TempPasswordTTL = defaultTempPasswordTTL
	}
	return &userService{
		repo:        repo,
		tokens:      tokens,
		hasher:      hasher,
		policy:      policy,
		passphrases: passphrases,
		notifier:    notifier,
		throttle:    throttle,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// applyPassword runs the policy and moves the user to the PasswordSet
// state: hash stored, expiry cleared, retry counter reset.
func (s *userService) applyPassword(user *domain.User, plaintext string) error {
	if err := s.policy.Validate(plaintext); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.HashedPassword = hash
	user.PasswordSet = true
	user.PasswordExpire = nil
	user.LoginRetry = 0
	return nil
}

func (s *userService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if err := s.policy.Validate(in.Password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        in.Email,
		FullName:     in.FullName,
		IsActive:     in.IsActive,
		IsSuperuser:  in.IsSuperuser,
		TimeCreation: now,
		TimeUpdated:  now,
	}
	if in.Password != "" {
		// policy already accepted it above
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = hash
		user.PasswordSet = true
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("state", string(created.CredentialState())).Msg("user created")
	return created, nil
}

func (s *userService) Register(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	user, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	if s.notifier == nil {
		return user, nil
	}

	// Passwordless sign-up gets a magic link; everyone else a plain
	// welcome mail pointing at the login page.
	link := s.cfg.FrontendHost + "/login"
	if !user.PasswordSet {
		passphrase, err := s.GenerateTemporaryPassword(ctx, user.Email)
		switch {
		case errors.Is(err, domain.ErrPasswordAlreadySet):
			// raced with another credential write; the welcome mail
			// degrades to a login link
		case err != nil:
			return nil, err
		default:
			link = fmt.Sprintf("%s/magic-link?token=%s", s.cfg.FrontendHost, passphrase)
		}
	}

	subject := fmt.Sprintf("%s - New account for user %s", s.cfg.ProjectName, user.Email)
	body := fmt.Sprintf("Welcome to %s!\n\nYour account %s is ready: %s\n", s.cfg.ProjectName, user.Email, link)
	if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
		// the account exists either way; losing the welcome mail is
		// recoverable through password recovery
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("new account mail failed")
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context, page, limit int) ([]*domain.User, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Update is the admin patch path. Fields absent from the patch keep their
// stored value; email may move here, and a password lands without the old
// one.
func (s *userService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}
	if in.Password != nil && *in.Password != "" {
		if err := s.applyPassword(user, *in.Password); err != nil {
			return nil, err
		}
	}

	user.TimeUpdated = s.now().UTC()
	return s.repo.Update(ctx, user)
}

// UpdateSelf is the /me patch path: only full name and password are
// mutable, and replacing a set password demands the old one.
func (s *userService) UpdateSelf(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Password != nil && *in.Password != "" {
		if !user.PasswordSet {
			return nil, domain.ErrPasswordNotSet
		}
		if in.OldPassword == "" || !s.hasher.Verify(in.OldPassword, user.HashedPassword) {
			return nil, domain.ErrPermissionDenied
		}
		if err := s.applyPassword(user, *in.Password); err != nil {
			return nil, err
		}
	}

	user.TimeUpdated = s.now().UTC()
	return s.repo.Update(ctx, user)
}

// Authenticate verifies a credential. Unknown email, no live password,
// expired temporary password and wrong password all surface as
// domain.ErrInvalidCredentials.
//
// Consuming a temporary password is single-use-atomic: the hash is cleared
// in the same version-checked update that recognizes success, so of two
// concurrent logins racing on the same passphrase exactly one wins.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.HashedPassword == "" || user.PasswordExpired(now) {
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}

	temporary := !user.PasswordSet
	user.LoginRetry = 0
	if temporary {
		user.HashedPassword = ""
		user.PasswordExpire = nil
	}
	user.TimeUpdated = now.UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			if temporary {
				// the passphrase was consumed concurrently
				return nil, domain.ErrInvalidCredentials
			}
			// a concurrent profile write beat the retry-counter
			// reset; the credential itself already verified
			s.log.Debug().Str("user_id", user.ID).Msg("login retry reset lost a write race")
			return user, nil
		}
		return nil, err
	}
	return updated, nil
}

// GenerateTemporaryPassword is legal only while no permanent password is
// set. It overwrites any previous passphrase, arms the expiry clock and
// returns the plaintext exactly once; only the hash is persisted.
func (s *userService) GenerateTemporaryPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.PasswordSet {
		return "", domain.ErrPasswordAlreadySet
	}

	passphrase, err := s.passphrases.Generate()
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(passphrase)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}

	now := s.now()
	expire := now.Add(s.cfg.TempPasswordTTL)
	user.HashedPassword = hash
	user.PasswordExpire = &expire
	user.LoginRetry = 0
	user.TimeUpdated = now.UTC()

	if _, err := s.repo.Update(ctx, user); err != nil {
		return "", err
	}
	s.log.Info().Str("user_id", user.ID).Time("expires", expire).Msg("temporary password issued")
	return passphrase, nil
}

// RecoverPassword issues a reset token and mails the recovery link.
// Unknown addresses return nil so callers answer identically either way.
func (s *userService) RecoverPassword(ctx context.Context, email string) error {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// throttling is advisory; recovery must not depend on it
			s.log.Warn().Err(err).Msg("recovery throttle unavailable")
		} else if !allowed {
			s.log.Info().Msg("recovery request throttled")
			return nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.IssuePasswordResetToken(user.Email)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	subject := fmt.Sprintf("%s - Password recovery for user %s", s.cfg.ProjectName, user.Email)
	body := fmt.Sprintf("Reset your password here: %s/reset-password?token=%s\n", s.cfg.FrontendHost, token)
	return s.notifier.Send(ctx, user.Email, subject, body)
}

// ResetPassword verifies a reset token and applies the new password. The
// transition lands in PasswordSet from any state, clearing a pending
// temporary passphrase.
func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.VerifyPasswordResetToken(token)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return domain.ErrInactiveUser
	}

	if err := s.applyPassword(user, newPassword); err != nil {
		return err
	}
	user.TimeUpdated = s.now().UTC()
	_, err = s.repo.Update(ctx, user)
	return err
}

// RequestEmailChange mails a confirmation link to the new address. The
// account itself is untouched until the token is applied.
func (s *userService) RequestEmailChange(ctx context.Context, user *domain.User, newEmail string) error {
	token, err := s.tokens.IssueEmailChangeToken(user.Email, newEmail)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	subject := fmt.Sprintf("%s - Email modification", s.cfg.ProjectName)
	body := fmt.Sprintf("Confirm your new address here: %s/confirm-email?token=%s\n", s.cfg.FrontendHost, token)
	return s.notifier.Send(ctx, newEmail, subject, body)
}

// ApplyEmailChange is the two-phase commit of an email change: the token
// must verify, and its subject must still resolve. A verified token whose
// account disappeared fails with NotFound rather than silently no-oping.
func (s *userService) ApplyEmailChange(ctx context.Context, token string) (*domain.User, error) {
	currentEmail, newEmail, err := s.tokens.VerifyEmailChangeToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, currentEmail)
	if err != nil {
		return nil, err
	}

	user.Email = newEmail
	user.TimeUpdated = s.now().UTC()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", updated.ID).Msg("email change applied")
	return updated, nil
}
