package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	repo "github.com/pmihaylov/user-management-api/internal/domain/repository"
	"github.com/pmihaylov/user-management-api/pkg/events"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// UserService is the user directory: it owns uniqueness enforcement, partial
// updates and deletion. Uniqueness is ultimately guaranteed by the storage
// layer's unique constraints; the existence probes here only exist to fail
// fast with a typed error before touching the store.
type UserService struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	Pub          *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{Repo: r, Logger: logger, Pub: pub, ES: es, ESUsersIndex: esUsersIndex}
}

type CreateUserInput struct {
	FirstName   string
	LastName    string
	DateOfBirth entity.Date
	PhoneNumber string
	Email       string
	Password    string
}

// UpdateUserInput is a partial update: nil means "leave unchanged" for every
// field, string fields are trimmed before being stored.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *entity.Date
	PhoneNumber *string
	Email       *string
	Password    *string
}

// Create registers a new user with role USER. Both uniqueness probes run
// before the insert; a concurrent duplicate that slips past them surfaces as
// the same typed error via the repository's constraint translation.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if exists, err := s.Repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if exists, err := s.Repo.ExistsByPhoneNumber(ctx, in.PhoneNumber); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.ErrDuplicatePhoneNumber
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DateOfBirth:  in.DateOfBirth,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithField("email", u.Email).Info("user registered")

	s.indexUser(ctx, u)
	s.publish(ctx, events.UserRegistered, u)
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Repo.GetByEmail(ctx, email)
}

// List returns all users ordered by (lastName, dateOfBirth) when search is
// blank, or the users matching search otherwise. An empty result is an error
// in both paths.
func (s *UserService) List(ctx context.Context, search string) ([]entity.User, error) {
	term := strings.TrimSpace(search)

	var (
		users []entity.User
		err   error
	)
	if term == "" {
		users, err = s.Repo.ListOrdered(ctx)
	} else {
		users, err = s.searchUsers(ctx, term)
	}
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNoUsersFound
	}
	return users, nil
}

// PartialUpdate merges the patch into the stored record. The phone and email
// probes both exclude the target user itself, so resubmitting a user's own
// values is a valid no-op.
func (s *UserService) PartialUpdate(ctx context.Context, id string, in UpdateUserInput) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = *in.DateOfBirth
	}
	if in.PhoneNumber != nil {
		other, err := s.Repo.FindByPhoneNumber(ctx, *in.PhoneNumber)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		if other != nil && other.ID != u.ID {
			return apperrors.ErrDuplicatePhoneNumber
		}
		u.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Email != nil {
		other, err := s.Repo.GetByEmail(ctx, *in.Email)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		if other != nil && other.ID != u.ID {
			return apperrors.ErrUserAlreadyExists
		}
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return err
	}
	s.Logger.WithField("email", u.Email).Info("user updated")

	s.indexUser(ctx, u)
	s.publish(ctx, events.UserUpdated, u)
	return nil
}

// Delete removes the record permanently. There is no tombstone.
func (s *UserService) Delete(ctx context.Context, id string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.WithField("email", u.Email).Info("user deleted")

	s.deleteUserDoc(ctx, id)
	s.publish(ctx, events.UserDeleted, u)
	return nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.Repo.ExistsByEmail(ctx, email)
}

func (s *UserService) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	return s.Repo.ExistsByPhoneNumber(ctx, phone)
}

// CredentialSubject resolves the identity and role claim used to mint a token.
func (s *UserService) CredentialSubject(ctx context.Context, email string) (string, entity.Role, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	return u.Email, u.Role, nil
}

// EnsureAdmin creates the fixed bootstrap admin if no user holds adminEmail.
// It goes straight to the repository: the seed phone number is a placeholder
// that would not pass request validation.
func (s *UserService) EnsureAdmin(ctx context.Context, adminEmail, adminPassword string) error {
	exists, err := s.Repo.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := helpers.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin := &entity.User{
		FirstName:    "admin",
		LastName:     "admin",
		DateOfBirth:  entity.NewDate(1990, time.March, 29),
		PhoneNumber:  "0000000000",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
	}
	err = s.Repo.Create(ctx, admin)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) || errors.Is(err, apperrors.ErrDuplicatePhoneNumber) {
		// another instance seeded first
		return nil
	}
	if err != nil {
		return err
	}
	s.Logger.WithField("email", adminEmail).Info("created ADMIN user")
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType string, u *entity.User) {
	if s.Pub == nil {
		return
	}
	ev := events.UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("type", eventType).Warn("event publish failed")
	}
}
