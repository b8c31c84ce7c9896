package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, order_number, campaign_recipient_id, user_id, status, total, currency, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.OrderNumber, o.CampaignRecipientID, o.UserID, string(o.Status), o.Total, o.Currency, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *orderRepo) CreateLineItem(ctx context.Context, tx repository.Tx, li *model.OrderLineItem) error {
	const q = `
INSERT INTO order_line_items (id, order_id, product_id, quantity, unit_price, currency)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, li.ID, li.OrderID, li.ProductID, li.Quantity, li.UnitPrice, li.Currency)
	return err
}

// Delete relies on ON DELETE CASCADE for line items.
func (r *orderRepo) Delete(ctx context.Context, tx repository.Tx, orderID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM orders WHERE id=$1;`, orderID)
	return err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1;`, orderID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, orderID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", orderID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Order, error) {
	if len(ids) == 0 {
		return []*model.Order{}, nil
	}
	return r.list(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = ANY($1);`, ids)
}

func (r *orderRepo) ListOrphans(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	const q = `
SELECT o.id, o.order_number, o.campaign_recipient_id, o.user_id, o.status, o.total, o.currency, o.created_at, o.updated_at
  FROM orders o
 WHERE o.campaign_recipient_id IS NOT NULL
   AND o.status = 'pending'
   AND o.created_at < $1
   AND NOT EXISTS (SELECT 1 FROM campaign_recipients r WHERE r.order_id = o.id)
 ORDER BY o.created_at
 LIMIT $2;`
	return r.list(ctx, tx, q, olderThan, limit)
}

func (r *orderRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Order, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o         model.Order
		recipient *string
		status    string
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &recipient, &o.UserID, &status, &o.Total, &o.Currency, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	if recipient != nil {
		o.CampaignRecipientID = *recipient
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
