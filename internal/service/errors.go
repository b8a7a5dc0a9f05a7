// Package service implements the credit ledger, the approval workflow, the
// generation gateway and the account and community operations on top of the
// repositories.  Errors wrap one of the sentinels below with %w.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyResolved     = errors.New("credit request already resolved")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrProviderFailure     = errors.New("image provider failure")
	ErrPersistence         = errors.New("persistence failure")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrReviewExists        = errors.New("review already submitted")
)

func validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
