package repositories

import (
	"errors"

	"netguard/internal/models"
)

// ErrDuplicateEmail is returned by Create when the email is already stored.
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository defines the interface for credential data access.
// GetByEmail returns (nil, nil) when no user has the given email.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	Count() (int64, error)
}
