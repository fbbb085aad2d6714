package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		FirstName:   "Georgi",
		LastName:    "Ivanov",
		DateOfBirth: entity.NewDate(1994, time.June, 3),
		PhoneNumber: "+359888111222",
		Email:       "georgi@example.com",
		Password:    "s3cret-pass",
	}
}

func TestUserService_Create(t *testing.T) {
	in := validCreateInput()

	tests := []struct {
		name     string
		setup    func(repo *MockUserRepository)
		wantErr  error
		wantUser bool
	}{
		{
			name: "success assigns USER role and hashes password",
			setup: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, in.Email).Return(false, nil)
				repo.On("ExistsByPhoneNumber", mock.Anything, in.PhoneNumber).Return(false, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
					Run(func(args mock.Arguments) {
						u := args.Get(1).(*entity.User)
						u.ID = "0b6f36cf-0f5a-4f3a-9d2e-6f1f6f1f6f1f"
						u.CreatedAt = time.Now()
					}).Return(nil)
			},
			wantUser: true,
		},
		{
			name: "duplicate email rejected before phone is probed",
			setup: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, in.Email).Return(true, nil)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name: "duplicate phone number rejected",
			setup: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, in.Email).Return(false, nil)
				repo.On("ExistsByPhoneNumber", mock.Anything, in.PhoneNumber).Return(true, nil)
			},
			wantErr: apperrors.ErrDuplicatePhoneNumber,
		},
		{
			name: "concurrent duplicate surfaces the storage-level error",
			setup: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, in.Email).Return(false, nil)
				repo.On("ExistsByPhoneNumber", mock.Anything, in.PhoneNumber).Return(false, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
					Return(apperrors.ErrUserAlreadyExists)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setup(repo)
			svc := NewUserService(repo, testLogger(), nil, nil, "")

			u, err := svc.Create(context.Background(), in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				if assert.True(t, tt.wantUser) && assert.NotNil(t, u) {
					assert.Equal(t, entity.RoleUser, u.Role)
					assert.NotEqual(t, in.Password, u.PasswordHash)
					assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, in.Password))
					assert.NotEmpty(t, u.ID)
				}
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_List(t *testing.T) {
	users := []entity.User{
		{ID: "1", FirstName: "Anna", LastName: "Borisova"},
		{ID: "2", FirstName: "Georgi", LastName: "Ivanov"},
	}

	t.Run("blank search lists everyone ordered", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ListOrdered", mock.Anything).Return(users, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		got, err := svc.List(context.Background(), "   ")

		assert.NoError(t, err)
		assert.Equal(t, users, got)
		repo.AssertExpectations(t)
	})

	t.Run("search term is trimmed and delegated", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("SearchByName", mock.Anything, "Anna").Return(users[:1], nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		got, err := svc.List(context.Background(), "  Anna ")

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Anna", got[0].FirstName)
		repo.AssertExpectations(t)
	})

	t.Run("empty directory is an error", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ListOrdered", mock.Anything).Return([]entity.User{}, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		got, err := svc.List(context.Background(), "")

		assert.ErrorIs(t, err, apperrors.ErrNoUsersFound)
		assert.Nil(t, got)
	})

	t.Run("search with no matches is an error", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("SearchByName", mock.Anything, "nobody").Return([]entity.User{}, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		_, err := svc.List(context.Background(), "nobody")

		assert.ErrorIs(t, err, apperrors.ErrNoUsersFound)
	})
}

func storedUser() *entity.User {
	hash, _ := helpers.HashPassword("original-pass")
	return &entity.User{
		ID:           "11111111-1111-1111-1111-111111111111",
		FirstName:    "Georgi",
		LastName:     "Ivanov",
		DateOfBirth:  entity.NewDate(1994, time.June, 3),
		PhoneNumber:  "+359888111222",
		Email:        "georgi@example.com",
		PasswordHash: hash,
		Role:         entity.RoleUser,
		CreatedAt:    time.Now(),
	}
}

func strptr(s string) *string { return &s }

func TestUserService_PartialUpdate(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrUserNotFound)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), "missing", UpdateUserInput{})

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("phone held by another user", func(t *testing.T) {
		target := storedUser()
		other := storedUser()
		other.ID = "22222222-2222-2222-2222-222222222222"
		other.PhoneNumber = "+359888999888"

		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("FindByPhoneNumber", mock.Anything, other.PhoneNumber).Return(other, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			PhoneNumber: strptr(other.PhoneNumber),
		})

		assert.ErrorIs(t, err, apperrors.ErrDuplicatePhoneNumber)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("resubmitting own phone is a no-op conflict-wise", func(t *testing.T) {
		target := storedUser()
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("FindByPhoneNumber", mock.Anything, target.PhoneNumber).Return(target, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			PhoneNumber: strptr(target.PhoneNumber),
		})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("resubmitting own email is a no-op conflict-wise", func(t *testing.T) {
		target := storedUser()
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("GetByEmail", mock.Anything, target.Email).Return(target, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			Email: strptr(target.Email),
		})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("email held by another user", func(t *testing.T) {
		target := storedUser()
		other := storedUser()
		other.ID = "22222222-2222-2222-2222-222222222222"
		other.Email = "taken@example.com"

		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("GetByEmail", mock.Anything, other.Email).Return(other, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			Email: strptr(other.Email),
		})

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("fields are trimmed and merged, nil fields untouched", func(t *testing.T) {
		target := storedUser()
		var saved *entity.User

		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.User) }).
			Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			FirstName: strptr("  Ivan  "),
		})

		assert.NoError(t, err)
		if assert.NotNil(t, saved) {
			assert.Equal(t, "Ivan", saved.FirstName)
			assert.Equal(t, "Ivanov", saved.LastName)
			assert.Equal(t, "georgi@example.com", saved.Email)
		}
	})

	t.Run("password change rehashes", func(t *testing.T) {
		target := storedUser()
		oldHash := target.PasswordHash
		var saved *entity.User

		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.User) }).
			Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{
			Password: strptr("brand-new-pass"),
		})

		assert.NoError(t, err)
		if assert.NotNil(t, saved) {
			assert.NotEqual(t, oldHash, saved.PasswordHash)
			assert.True(t, helpers.CompareHashAndPassword(saved.PasswordHash, "brand-new-pass"))
		}
	})

	t.Run("empty patch still succeeds", func(t *testing.T) {
		target := storedUser()
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.PartialUpdate(context.Background(), target.ID, UpdateUserInput{})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrUserNotFound)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.Delete(context.Background(), "missing")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		target := storedUser()
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("Delete", mock.Anything, target.ID).Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.Delete(context.Background(), target.ID)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		target := storedUser()
		boom := errors.New("connection reset")
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("Delete", mock.Anything, target.ID).Return(boom)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.Delete(context.Background(), target.ID)

		assert.ErrorIs(t, err, boom)
	})
}

func TestUserService_CredentialSubject(t *testing.T) {
	t.Run("resolves subject and role by email", func(t *testing.T) {
		stored := storedUser()
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, stored.Email).Return(stored, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		subject, role, err := svc.CredentialSubject(context.Background(), stored.Email)

		assert.NoError(t, err)
		assert.Equal(t, stored.Email, subject)
		assert.Equal(t, entity.RoleUser, role)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrUserNotFound)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		_, _, err := svc.CredentialSubject(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	t.Run("already seeded", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", mock.Anything, "admin@admin.com").Return(true, nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.EnsureAdmin(context.Background(), "admin@admin.com", "password")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates the bootstrap admin", func(t *testing.T) {
		var created *entity.User
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", mock.Anything, "admin@admin.com").Return(false, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*entity.User) }).
			Return(nil)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.EnsureAdmin(context.Background(), "admin@admin.com", "password")

		assert.NoError(t, err)
		if assert.NotNil(t, created) {
			assert.Equal(t, entity.RoleAdmin, created.Role)
			assert.Equal(t, "admin@admin.com", created.Email)
			assert.True(t, helpers.CompareHashAndPassword(created.PasswordHash, "password"))
		}
	})

	t.Run("lost the seeding race", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", mock.Anything, "admin@admin.com").Return(false, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
			Return(apperrors.ErrUserAlreadyExists)
		svc := NewUserService(repo, testLogger(), nil, nil, "")

		err := svc.EnsureAdmin(context.Background(), "admin@admin.com", "password")

		assert.NoError(t, err)
	})
}
