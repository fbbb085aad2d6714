package repository

import (
	"context"

	"github.com/pmihaylov/user-management-api/internal/domain/entity"
)

// UserRepository defines the persistence gateway for user records.
// Implementations return the sentinel errors from internal/apperrors for
// not-found and uniqueness violations so callers never see raw storage errors.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error)
	// ListOrdered returns all users ordered by last name, then date of birth.
	ListOrdered(ctx context.Context) ([]entity.User, error)
	// SearchByName returns users whose first or last name contains term.
	SearchByName(ctx context.Context, term string) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
