package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ repository.CampaignRepository = (*campaignRepo)(nil)

type campaignRepo struct{ pool *pgxpool.Pool }

func NewCampaignRepo(pool *pgxpool.Pool) *campaignRepo {
	return &campaignRepo{pool: pool}
}

const campaignColumns = `id, organization_id, name, per_recipient_budget, currency, selected_products, created_at`

func (r *campaignRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Campaign, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanCampaign(row)
}

func (r *campaignRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Campaign, error) {
	if len(ids) == 0 {
		return []*model.Campaign{}, nil
	}
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ANY($1);`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *campaignRepo) Save(ctx context.Context, tx repository.Tx, c *model.Campaign) error {
	const q = `
INSERT INTO campaigns (` + campaignColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  organization_id=$2, name=$3, per_recipient_budget=$4, currency=$5, selected_products=$6;`
	products := c.SelectedProducts
	if products == nil {
		products = []string{}
	}
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.OrganizationID, c.Name, c.PerRecipientBudget, c.Currency, products, c.CreatedAt)
	return err
}

func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var c model.Campaign
	if err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.PerRecipientBudget, &c.Currency, &c.SelectedProducts, &c.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &c, nil
}
