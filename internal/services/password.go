package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy decides how passwords are stored and compared.
type PasswordPolicy interface {
	Hash(password string) (string, error)
	Matches(stored, supplied string) (bool, error)
}

// PlaintextPolicy stores passwords as given.
// SECURITY: plaintext storage is kept for compatibility with existing
// users.db files; enable BcryptPolicy with AUTH_HASH_PASSWORDS for new deployments.
type PlaintextPolicy struct{}

// Hash returns password unchanged.
func (PlaintextPolicy) Hash(password string) (string, error) {
	return password, nil
}

// Matches compares the stored and supplied passwords byte for byte.
func (PlaintextPolicy) Matches(stored, supplied string) (bool, error) {
	return stored == supplied, nil
}

// BcryptPolicy stores bcrypt hashes.
type BcryptPolicy struct {
	Cost int
}

// Hash returns the bcrypt hash of password. A zero Cost uses bcrypt.DefaultCost.
func (p BcryptPolicy) Hash(password string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether supplied hashes to stored. A malformed hash is an error.
func (BcryptPolicy) Matches(stored, supplied string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return true, nil
}
