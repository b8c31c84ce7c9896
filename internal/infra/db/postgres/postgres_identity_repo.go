package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ adapter.IdentityResolver = (*identityRepo)(nil)

// identityRepo resolves authenticated users against staff_members.
type identityRepo struct{ pool *pgxpool.Pool }

func NewIdentityRepo(pool *pgxpool.Pool) *identityRepo {
	return &identityRepo{pool: pool}
}

func (r *identityRepo) Resolve(ctx context.Context, userID string) (*model.Caller, error) {
	const q = `SELECT user_id, email, organization_id, role FROM staff_members WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, repository.NoTX, q, userID)
	if err != nil {
		return nil, err
	}
	var (
		c    model.Caller
		org  *string
		role string
	)
	if err := row.Scan(&c.UserID, &c.Email, &org, &role); err != nil {
		err = scanErr(err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if org != nil {
		c.OrganizationID = *org
	}
	c.Role = model.Role(role)
	return &c, nil
}

// Save upserts a member; used by seeding.
func (r *identityRepo) Save(ctx context.Context, tx repository.Tx, c *model.Caller) error {
	const q = `
INSERT INTO staff_members (user_id, email, organization_id, role)
VALUES ($1,$2,NULLIF($3,''),$4)
ON CONFLICT (user_id) DO UPDATE SET email=$2, organization_id=NULLIF($3,''), role=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, c.UserID, c.Email, c.OrganizationID, string(c.Role))
	return err
}
