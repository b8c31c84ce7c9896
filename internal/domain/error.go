package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Caller identity / scope
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient role for this organization")
	ErrRateLimited  = errors.New("too many requests")

	// Invite lifecycle. Messages are shown to unauthenticated token holders.
	ErrInviteNotFound = errors.New("invalid or expired link")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrLinkExpired    = errors.New("expired")

	// Validation
	ErrValidation         = errors.New("validation failed")
	ErrProductUnavailable = errors.New("product not available for this campaign")
	ErrOverBudget         = errors.New("product exceeds the gift budget")
	ErrInvalidAddress     = errors.New("invalid shipping address")

	// Dependent writes. Details stay in the logs.
	ErrOrderCreateFailed   = errors.New("failed to create order")
	ErrSelectionSaveFailed = errors.New("failed to save selection")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrProductUnavailable) ||
		errors.Is(err, ErrOverBudget) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidArgument)
}
