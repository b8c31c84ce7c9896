package repository

import (
	"context"

	"corporate-gifting/internal/domain/model"
)

// CampaignRepository is read-only from the redemption flow's perspective.
type CampaignRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Campaign, error)
	FindByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.Campaign, error)
	// Save is used by seeding and administrative tooling only.
	Save(ctx context.Context, tx Tx, c *model.Campaign) error
}
