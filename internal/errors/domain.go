package errors

import "errors"

// domain error taxonomy shared by stores, services and handlers.
// services wrap these with fmt.Errorf("context: %w", err); callers match with errors.Is.
var (
	// bad caller input, surfaced immediately and never retried
	ErrValidation = errors.New("validation failed")

	// read miss on a keyed item
	ErrNotFound = errors.New("not found")

	// conditional write lost against an existing item
	ErrConditionFailed = errors.New("conditional check failed")

	// backing store unreachable or failing; recoverable, retry belongs to the caller
	ErrStoreUnavailable = errors.New("store unavailable")
)

// reports whether err belongs to the validation category
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// reports whether err is a read miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// reports whether err is a lost conditional write
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// reports whether err came from an unreachable store
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
