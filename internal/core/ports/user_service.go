package ports

import (
	"context"

	"github.com/identikit/identity-api/internal/core/domain"
)

// CreateUserInput is the immutable intent for account creation. An empty
// Password registers the account passwordless when the policy allows it.
type CreateUserInput struct {
	Email       string
	FullName    string
	Password    string
	IsActive    bool
	IsSuperuser bool
}

// UpdateUserInput is an optional-field patch: nil pointers leave the field
// untouched. Email is only honored by the admin Update path; self-service
// updates ignore it. OldPassword must accompany Password when the account
// already has one set.
type UpdateUserInput struct {
	Email       *string
	FullName    *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
	OldPassword string
}

// UserService is the single authority over an identity's credential state.
type UserService interface {
	// Create runs the password policy, hashes the credential and stores
	// the new user. Returns domain.ErrUserExists on a taken email and
	// *domain.PolicyError on rejection.
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)

	// Register is Create plus the new-account notification; when the
	// account is passwordless it also generates and mails a magic-link
	// temporary passphrase.
	Register(ctx context.Context, in CreateUserInput) (*domain.User, error)

	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error

	// Update is the admin patch path: may change email, flags and
	// password without the old one.
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)

	// UpdateSelf is the /me patch path: email changes are ignored, a
	// password change requires PasswordSet and a correct OldPassword.
	UpdateSelf(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)

	// Authenticate verifies a credential against the stored hash.
	// Unknown email, wrong password, no live password and expired
	// temporary password all surface as domain.ErrInvalidCredentials.
	// A temporary password is consumed by its first success.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GenerateTemporaryPassword creates a one-hour multi-word passphrase
	// for an account without a set password and returns the plaintext
	// exactly once. Returns domain.ErrPasswordAlreadySet when ineligible.
	GenerateTemporaryPassword(ctx context.Context, email string) (string, error)

	// RecoverPassword issues a reset token and notifies the account.
	// Unknown emails are swallowed so the caller's response shape never
	// reveals whether the account exists.
	RecoverPassword(ctx context.Context, email string) error

	// ResetPassword verifies a reset token and sets the new password.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// RequestEmailChange issues an email-change token and sends the
	// confirmation link to the new address.
	RequestEmailChange(ctx context.Context, user *domain.User, newEmail string) error

	// ApplyEmailChange verifies an email-change token and moves the
	// account to the new address. A token whose subject no longer
	// resolves fails with domain.ErrUserNotFound.
	ApplyEmailChange(ctx context.Context, token string) (*domain.User, error)
}
