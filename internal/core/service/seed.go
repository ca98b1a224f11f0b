package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// EnsureFirstSuperuser creates the bootstrap admin account if it does not
// exist yet. Safe to run on every startup.
func EnsureFirstSuperuser(ctx context.Context, users ports.UserService, email, password string, log zerolog.Logger) error {
	_, err := users.Create(ctx, ports.CreateUserInput{
		Email:       email,
		Password:    password,
		IsActive:    true,
		IsSuperuser: true,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("first superuser created")
	return nil
}
