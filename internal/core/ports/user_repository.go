package ports

import (
	"context"

	"github.com/identikit/identity-api/internal/core/domain"
)

// UserRepository defines the interface for identity persistence.
//
// Update must be atomic per user: implementations compare the record's
// Version field and return domain.ErrVersionConflict when another writer
// got there first. This is what makes temporary-password consumption
// single-use under concurrent logins.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]*domain.User, error)
}
