package repository

import (
	"context"
	"time"

	"corporate-gifting/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx Tx, o *model.Order) error
	CreateLineItem(ctx context.Context, tx Tx, li *model.OrderLineItem) error
	// Delete removes an order and its line items. Deleting a missing order is not an error.
	Delete(ctx context.Context, tx Tx, orderID string) error
	UpdateStatus(ctx context.Context, tx Tx, orderID string, status model.OrderStatus) error
	FindByID(ctx context.Context, tx Tx, orderID string) (*model.Order, error)
	FindByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.Order, error)
	// ListOrphans returns redemption orders created before olderThan whose invite
	// does not reference them.
	ListOrphans(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)
}
