package ports

import "errors"

// Storage adapters wrap driver failures in these so the service can classify
// them without importing a driver.
var (
	// ErrIntegrityViolation covers unique, check and foreign key violations.
	ErrIntegrityViolation = errors.New("data integrity violation")
	// ErrLockTimeout means a row lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock wait timeout")
)
