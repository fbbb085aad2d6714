package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

func testAuthService(repo *MockUserRepository) *AuthService {
	users := NewUserService(repo, testLogger(), nil, nil, "")
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, jwt, testLogger())
}

func TestAuthService_Register(t *testing.T) {
	in := validCreateInput()

	t.Run("returns a token for the new identity", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", mock.Anything, in.Email).Return(false, nil)
		repo.On("ExistsByPhoneNumber", mock.Anything, in.PhoneNumber).Return(false, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
		svc := testAuthService(repo)

		token, err := svc.Register(context.Background(), in)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.JWT.Parse(token)
		assert.NoError(t, err)
		assert.Equal(t, in.Email, claims.Subject)
		assert.Equal(t, "ROLE_USER", claims.Role)
	})

	t.Run("duplicate email yields no token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", mock.Anything, in.Email).Return(true, nil)
		svc := testAuthService(repo)

		token, err := svc.Register(context.Background(), in)

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		assert.Empty(t, token)
	})
}

func TestAuthService_Login(t *testing.T) {
	stored := storedUser()

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrUserNotFound)
		svc := testAuthService(repo)

		token, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Empty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, stored.Email).Return(stored, nil)
		svc := testAuthService(repo)

		token, err := svc.Login(context.Background(), stored.Email, "not-the-password")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Empty(t, token)
	})

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, stored.Email).Return(stored, nil)
		svc := testAuthService(repo)

		token, err := svc.Login(context.Background(), stored.Email, "original-pass")

		assert.NoError(t, err)
		claims, err := svc.JWT.Parse(token)
		assert.NoError(t, err)
		assert.Equal(t, stored.Email, claims.Subject)
		assert.Equal(t, "ROLE_USER", claims.Role)
	})
}
