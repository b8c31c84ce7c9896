package adapter

import (
	"context"

	"corporate-gifting/internal/domain/model"
)

// IdentityResolver looks up the organization and role of an authenticated user.
// It returns domain.ErrForbidden when the user has no staff record.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (*model.Caller, error)
}
