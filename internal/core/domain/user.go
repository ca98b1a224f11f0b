package domain

import "time"

// CredentialState describes the password lifecycle of a user.
type CredentialState string

const (
	// StateNoPassword: the account was registered without a password and
	// no temporary one is pending. Authentication always fails.
	StateNoPassword CredentialState = "no_password"
	// StatePasswordSet: the user chose a password. The stored hash never
	// expires and can only be replaced, not cleared.
	StatePasswordSet CredentialState = "password_set"
	// StateTemporaryPassword: a magic-link passphrase was generated. The
	// hash is live until it expires or is consumed by one successful login.
	StateTemporaryPassword CredentialState = "temporary_password"
)

// User is the core identity record.
//
// Invariant: HashedPassword is empty only when PasswordSet is false and no
// temporary password is live. At most one temporary password exists at a
// time; generating a new one overwrites the previous.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`

	// admin only
	IsActive    bool `json:"is_active"`
	IsSuperuser bool `json:"is_superuser"`

	// generated, never exposed
	HashedPassword string     `json:"-"`
	PasswordSet    bool       `json:"password_set"`
	PasswordExpire *time.Time `json:"-"`
	LoginRetry     int        `json:"-"`

	// Version guards read-modify-write cycles in the store.
	Version      int64     `json:"-"`
	TimeCreation time.Time `json:"time_creation"`
	TimeUpdated  time.Time `json:"time_updated"`
}

// CredentialState derives the lifecycle state from the stored fields.
func (u *User) CredentialState() CredentialState {
	switch {
	case u.PasswordSet:
		return StatePasswordSet
	case u.HashedPassword != "":
		return StateTemporaryPassword
	default:
		return StateNoPassword
	}
}

// PasswordExpired reports whether a temporary password's lifetime has passed.
// Permanent passwords carry no expiry and never expire.
func (u *User) PasswordExpired(now time.Time) bool {
	return u.PasswordExpire != nil && now.After(*u.PasswordExpire)
}
