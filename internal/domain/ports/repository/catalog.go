package repository

import (
	"context"

	"corporate-gifting/internal/domain/model"
)

// CatalogRepository exposes catalog/pricing data owned by another subsystem.
// FindByID is authoritative for price and currency at commit time.
type CatalogRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	// FindByIDs silently skips ids that do not exist.
	FindByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.Product, error)
	Save(ctx context.Context, tx Tx, p *model.Product) error
}
