package repository

import (
	"context"

	"corporate-gifting/internal/domain/model"
)

// InviteRepository is the recipient ledger.
type InviteRepository interface {
	// CreateBatch persists all invites in one write; either every row is created or none.
	CreateBatch(ctx context.Context, tx Tx, invites []*model.RecipientInvite) error
	// FindByToken returns domain.ErrNotFound when no invite carries token.
	FindByToken(ctx context.Context, tx Tx, token string) (*model.RecipientInvite, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.RecipientInvite, error)
	// MarkClaimed writes the claim only if the invite is still unclaimed.
	// It returns false when no row was updated.
	MarkClaimed(ctx context.Context, tx Tx, inviteID string, claim model.Claim) (bool, error)
	ListByCampaign(ctx context.Context, tx Tx, campaignID string) ([]*model.RecipientInvite, error)
	ListUnclaimedByCampaign(ctx context.Context, tx Tx, campaignID string) ([]*model.RecipientInvite, error)
	ListByEmail(ctx context.Context, tx Tx, email string) ([]*model.RecipientInvite, error)
}
