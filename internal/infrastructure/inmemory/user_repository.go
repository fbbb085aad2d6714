package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	"github.com/pmihaylov/user-management-api/internal/domain/repository"
)

// UserRepository is a map-backed store used by tests and local experiments.
// It enforces the same uniqueness and not-found semantics as the Postgres
// implementation, including uniqueness on the write itself.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User // keyed by id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrUserAlreadyExists
		}
		if existing.PhoneNumber == u.PhoneNumber {
			return apperrors.ErrDuplicatePhoneNumber
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) FindByPhoneNumber(_ context.Context, phone string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *UserRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	_, err := r.FindByPhoneNumber(ctx, phone)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *UserRepository) ListOrdered(_ context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].LastName != users[j].LastName {
			return users[i].LastName < users[j].LastName
		}
		return users[i].DateOfBirth.Before(users[j].DateOfBirth.Time)
	})
	return users, nil
}

func (r *UserRepository) SearchByName(_ context.Context, term string) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(term)
	var users []entity.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.FirstName), needle) ||
			strings.Contains(strings.ToLower(u.LastName), needle) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return apperrors.ErrUserAlreadyExists
		}
		if existing.PhoneNumber == u.PhoneNumber {
			return apperrors.ErrDuplicatePhoneNumber
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
