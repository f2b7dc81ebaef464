package account

import (
	"context"
	"errors"
)

var (
	// ErrAccountNotFound is returned when no account matches an external key.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when creating an account whose external
	// key is already registered.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidExternalKey is returned for a blank external key.
	ErrInvalidExternalKey = errors.New("external key is required")
)

// Repository is the registry of accounts, keyed by external key.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByExternalKey(ctx context.Context, externalKey string) (Account, error)
	UpdateDisplayName(ctx context.Context, externalKey, displayName string) error
	Delete(ctx context.Context, externalKey string) error
	Count(ctx context.Context) (int, error)
}
