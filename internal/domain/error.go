package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnauthorized     = errors.New("caller identity missing")
	ErrForbidden        = errors.New("caller is not the owner")
	ErrAlreadyUnlocked  = errors.New("e-card is already unlocked")
	ErrInvalidSignature = errors.New("gateway signature verification failed")
	ErrDeadlinePassed   = errors.New("rsvp deadline has passed")
	ErrMockUnavailable  = errors.New("mock payment path is not available with a live gateway")

	// Infrastructure-layer sentinels surfaced through repositories.
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrLockNotAcquired    = errors.New("could not acquire lock")
)
