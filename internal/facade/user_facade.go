package facade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/identity"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

// UserFacade handles player profiles.
type UserFacade struct {
	services *Services
}

// NewUserFacade creates a new UserFacade with the given services.
func NewUserFacade(services *Services) *UserFacade {
	return &UserFacade{services: services}
}

// Register returns the profile of an identity provider subject, creating it
// with the given display name on first sign-in. The subject is expected to be
// verified by the identity provider; only its hash is stored.
func (u *UserFacade) Register(ctx context.Context, subject, displayName string) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, invalidInput("Sign-in subject cannot be empty")
	}
	hash := identity.HashSubject(subject)
	repo := repository.NewUserRepository(u.services.DB.Conn())

	var existing *models.User
	err := storage.RetryOnBusy(func() error {
		var err error
		existing, err = repo.GetBySubjectHash(ctx, hash)
		return err
	})
	if err != nil {
		return nil, storeError("load user", err)
	}
	if existing != nil {
		return existing, nil
	}

	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}
	if err := u.checkAvailable(ctx, repo, name, ""); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          models.UserID(hash[:24]),
		DisplayName: name,
		SubjectHash: &hash,
		CreatedAt:   time.Now().UTC(),
	}
	err = storage.RetryOnBusy(func() error {
		return repo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, nameTaken()
		}
		return nil, storeError("create user", err)
	}

	log.Printf("Registered user %s", user.ID)
	return user, nil
}

// Me retrieves the profile of a signed-in user.
func (u *UserFacade) Me(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User
	err := storage.RetryOnBusy(func() error {
		var err error
		user, err = repository.NewUserRepository(u.services.DB.Conn()).GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeError("load user", err)
	}
	if user == nil {
		return nil, notFound("User")
	}
	return user, nil
}

// IsAvailable reports whether a display name is valid and unused.
func (u *UserFacade) IsAvailable(ctx context.Context, displayName string) (bool, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return false, err
	}
	err = u.checkAvailable(ctx, repository.NewUserRepository(u.services.DB.Conn()), name, "")
	if errors.Is(err, storage.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

// Rename changes a user's display name.
func (u *UserFacade) Rename(ctx context.Context, userID, displayName string) (*models.User, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}
	repo := repository.NewUserRepository(u.services.DB.Conn())
	if err := u.checkAvailable(ctx, repo, name, userID); err != nil {
		return nil, err
	}

	err = storage.RetryOnBusy(func() error {
		return repo.UpdateDisplayName(ctx, userID, name)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFound("User")
		}
		if errors.Is(err, storage.ErrConflict) {
			return nil, nameTaken()
		}
		return nil, storeError("rename user", err)
	}
	return u.Me(ctx, userID)
}

func (u *UserFacade) checkAvailable(ctx context.Context, repo repository.UserRepository, name, selfID string) error {
	var owner *models.User
	err := storage.RetryOnBusy(func() error {
		var err error
		owner, err = repo.GetByDisplayName(ctx, name)
		return err
	})
	if err != nil {
		return storeError("check display name", err)
	}
	if owner != nil && owner.ID != selfID {
		return nameTaken()
	}
	return nil
}

func normalizeName(displayName string) (string, error) {
	name, err := identity.NormalizeDisplayName(displayName)
	if err != nil {
		msg := err.Error()
		return "", &AppError{Message: strings.ToUpper(msg[:1]) + msg[1:], Err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
	}
	return name, nil
}

func nameTaken() *AppError {
	return &AppError{Message: "This username is already taken", Err: storage.ErrConflict}
}
