package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ repository.CatalogRepository = (*catalogRepo)(nil)

type catalogRepo struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

const productColumns = `id, name, description, image_url, price, currency, active`

func (r *catalogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+productColumns+` FROM products WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanProduct(row)
}

func (r *catalogRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Product, error) {
	if len(ids) == 0 {
		return []*model.Product{}, nil
	}
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1);`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *catalogRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (` + productColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, image_url=$4, price=$5, currency=$6, active=$7;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Description, p.ImageURL, p.Price, p.Currency, p.Active)
	return err
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Price, &p.Currency, &p.Active); err != nil {
		return nil, scanErr(err)
	}
	return &p, nil
}
