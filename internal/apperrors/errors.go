package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the email is already taken.
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	// ErrDuplicatePhoneNumber is returned when the phone number is already taken.
	ErrDuplicatePhoneNumber = errors.New("phone number already exists")
	// ErrNoUsersFound is returned when a list or search yields no users.
	ErrNoUsersFound = errors.New("no users found")
	// ErrInvalidCredentials is returned when the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StatusCode maps a domain error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoUsersFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrDuplicatePhoneNumber):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
