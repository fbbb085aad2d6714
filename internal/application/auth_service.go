package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// AuthService orchestrates registration and login on top of the user
// directory and issues the signed bearer tokens.
type AuthService struct {
	Users  *UserService
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users *UserService, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

// Register creates the user (uniqueness checks included) and returns a token
// bound to the new identity and its role.
func (s *AuthService) Register(ctx context.Context, in CreateUserInput) (string, error) {
	u, err := s.Users.Create(ctx, in)
	if err != nil {
		return "", err
	}
	token, _, err := s.JWT.Generate(u.Email, u.Role.Authority())
	if err != nil {
		return "", err
	}
	return token, nil
}

// Login resolves the identity by email and verifies the password against the
// stored hash before issuing a token. An unknown email stays a distinct error
// from a wrong password, matching the HTTP contract (404 vs 401).
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return "", apperrors.ErrInvalidCredentials
	}
	token, _, err := s.JWT.Generate(u.Email, u.Role.Authority())
	if err != nil {
		return "", err
	}
	s.Logger.WithField("email", u.Email).Info("user logged in")
	return token, nil
}
