package ports

// TokenService issues and verifies the three token kinds. All operations
// are pure computations over a process-wide signing secret; none of them
// touches storage or the network.
//
// Every Verify* collapses forged, malformed and expired tokens into
// domain.ErrInvalidToken so callers cannot distinguish the cases.
type TokenService interface {
	// IssueSessionToken binds subject = user id and nothing else.
	IssueSessionToken(userID string) (string, error)
	VerifySessionToken(token string) (userID string, err error)

	IssuePasswordResetToken(email string) (string, error)
	VerifyPasswordResetToken(token string) (email string, err error)

	// IssueEmailChangeToken carries subject = current email and
	// payload = new email. Validity is independent of whether the
	// current email still resolves to a user; that check belongs to
	// the applying operation.
	IssueEmailChangeToken(currentEmail, newEmail string) (string, error)
	VerifyEmailChangeToken(token string) (currentEmail, newEmail string, err error)
}
