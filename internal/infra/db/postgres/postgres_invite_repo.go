package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ repository.InviteRepository = (*inviteRepo)(nil)

type inviteRepo struct{ pool *pgxpool.Pool }

func NewInviteRepo(pool *pgxpool.Pool) *inviteRepo {
	return &inviteRepo{pool: pool}
}

const inviteColumns = `id, campaign_id, name, email, designation, department, phone, token,
       link_expires_at, created_at, claimed_at, order_id, selected_product_id,
       shipping_address, size_color_preference`

var inviteCopyColumns = []string{
	"id", "campaign_id", "name", "email", "designation", "department", "phone", "token",
	"link_expires_at", "created_at",
}

// CreateBatch streams the batch with COPY; a single COPY is atomic, so a duplicate
// token anywhere in the batch leaves no rows behind.
func (r *inviteRepo) CreateBatch(ctx context.Context, tx repository.Tx, invites []*model.RecipientInvite) error {
	if len(invites) == 0 {
		return nil
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(invites))
	for _, inv := range invites {
		rows = append(rows, []interface{}{
			inv.ID, inv.CampaignID, inv.Name, inv.Email, inv.Designation, inv.Department, inv.Phone, inv.Token,
			inv.LinkExpiresAt, inv.CreatedAt,
		})
	}
	n, err := ex.CopyFrom(ctx, pgx.Identifier{"campaign_recipients"}, inviteCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return mapPgError(err)
	}
	if int(n) != len(invites) {
		return fmt.Errorf("%w: copied %d of %d invites", domain.ErrOperationFailed, n, len(invites))
	}
	return nil
}

func (r *inviteRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.RecipientInvite, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+inviteColumns+` FROM campaign_recipients WHERE token=$1;`, token)
	if err != nil {
		return nil, err
	}
	return scanInvite(row)
}

func (r *inviteRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecipientInvite, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+inviteColumns+` FROM campaign_recipients WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanInvite(row)
}

// MarkClaimed is the optimistic-concurrency check: the row must still be unclaimed
// and unexpired at claim time. Zero rows affected means another writer won.
func (r *inviteRepo) MarkClaimed(ctx context.Context, tx repository.Tx, inviteID string, claim model.Claim) (bool, error) {
	const q = `
UPDATE campaign_recipients
   SET claimed_at=$2, order_id=$3, selected_product_id=$4, shipping_address=$5, size_color_preference=$6
 WHERE id=$1
   AND claimed_at IS NULL
   AND (link_expires_at IS NULL OR link_expires_at > $2);`

	addr, err := json.Marshal(claim.ShippingAddress)
	if err != nil {
		return false, fmt.Errorf("%w: encode address: %v", domain.ErrInvalidArgument, err)
	}
	tag, err := execSQL(ctx, r.pool, tx, q, inviteID, claim.ClaimedAt, claim.OrderID, claim.ProductID, string(addr), claim.SizeColorPreference)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *inviteRepo) ListByCampaign(ctx context.Context, tx repository.Tx, campaignID string) ([]*model.RecipientInvite, error) {
	return r.list(ctx, tx, `SELECT `+inviteColumns+` FROM campaign_recipients WHERE campaign_id=$1 ORDER BY created_at, email;`, campaignID)
}

func (r *inviteRepo) ListUnclaimedByCampaign(ctx context.Context, tx repository.Tx, campaignID string) ([]*model.RecipientInvite, error) {
	return r.list(ctx, tx, `SELECT `+inviteColumns+` FROM campaign_recipients WHERE campaign_id=$1 AND claimed_at IS NULL ORDER BY created_at, email;`, campaignID)
}

func (r *inviteRepo) ListByEmail(ctx context.Context, tx repository.Tx, email string) ([]*model.RecipientInvite, error) {
	return r.list(ctx, tx, `SELECT `+inviteColumns+` FROM campaign_recipients WHERE email=$1 ORDER BY created_at DESC;`, email)
}

func (r *inviteRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.RecipientInvite, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.RecipientInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvite(row pgx.Row) (*model.RecipientInvite, error) {
	var (
		inv  model.RecipientInvite
		addr []byte
	)
	if err := row.Scan(
		&inv.ID, &inv.CampaignID, &inv.Name, &inv.Email, &inv.Designation, &inv.Department, &inv.Phone, &inv.Token,
		&inv.LinkExpiresAt, &inv.CreatedAt, &inv.ClaimedAt, &inv.OrderID, &inv.SelectedProductID,
		&addr, &inv.SizeColorPreference,
	); err != nil {
		return nil, scanErr(err)
	}
	if len(addr) > 0 {
		var a model.ShippingAddress
		if err := json.Unmarshal(addr, &a); err != nil {
			return nil, fmt.Errorf("%w: shipping_address: %v", domain.ErrReadDatabaseRow, err)
		}
		inv.ShippingAddress = &a
	}
	return &inv, nil
}
