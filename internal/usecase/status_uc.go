package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/logging"
)

// StatusUseCase joins invites with campaigns, products and orders for display.
// Display status is derived on every read and never stored.
type StatusUseCase interface {
	ListForCampaign(ctx context.Context, caller *model.Caller, campaignID string) ([]*model.GiftStatusRow, error)
	ListForRecipient(ctx context.Context, caller *model.Caller) ([]*model.GiftStatusRow, error)
	UpdateOrderStatus(ctx context.Context, caller *model.Caller, orderID string, status model.OrderStatus) (*model.Order, error)
}

var _ StatusUseCase = (*statusUC)(nil)

type statusUC struct {
	invites   repository.InviteRepository
	campaigns repository.CampaignRepository
	catalog   repository.CatalogRepository
	orders    repository.OrderRepository
	now       func() time.Time
	log       *zerolog.Logger
}

func NewStatusUseCase(
	invites repository.InviteRepository,
	campaigns repository.CampaignRepository,
	catalog repository.CatalogRepository,
	orders repository.OrderRepository,
	logger *zerolog.Logger,
) StatusUseCase {
	l := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{
		invites:   invites,
		campaigns: campaigns,
		catalog:   catalog,
		orders:    orders,
		now:       time.Now,
		log:       &l,
	}
}

func (u *statusUC) ListForCampaign(ctx context.Context, caller *model.Caller, campaignID string) ([]*model.GiftStatusRow, error) {
	defer logging.TraceDuration(u.log, "StatusUC.ListForCampaign")()

	camp, err := authorizeCampaign(ctx, u.campaigns, caller, campaignID)
	if err != nil {
		return nil, err
	}
	invites, err := u.invites.ListByCampaign(ctx, repository.NoTX, camp.ID)
	if err != nil {
		return nil, err
	}
	return u.join(ctx, invites, map[string]*model.Campaign{camp.ID: camp})
}

func (u *statusUC) ListForRecipient(ctx context.Context, caller *model.Caller) ([]*model.GiftStatusRow, error) {
	defer logging.TraceDuration(u.log, "StatusUC.ListForRecipient")()

	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	email := strings.ToLower(strings.TrimSpace(caller.Email))
	if email == "" {
		return []*model.GiftStatusRow{}, nil
	}
	invites, err := u.invites.ListByEmail(ctx, repository.NoTX, email)
	if err != nil {
		return nil, err
	}

	ids := uniq(len(invites), func(add func(string)) {
		for _, inv := range invites {
			add(inv.CampaignID)
		}
	})
	camps, err := u.campaigns.FindByIDs(ctx, repository.NoTX, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Campaign, len(camps))
	for _, c := range camps {
		byID[c.ID] = c
	}
	return u.join(ctx, invites, byID)
}

func (u *statusUC) UpdateOrderStatus(ctx context.Context, caller *model.Caller, orderID string, status model.OrderStatus) (*model.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if !caller.IsPrivileged() {
		return nil, domain.ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}

	order, err := u.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	inv, err := u.invites.FindByID(ctx, repository.NoTX, order.CampaignRecipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// orphaned order; only visible platform-wide
			if caller.IsSuperAdmin() {
				return u.setStatus(ctx, order, status)
			}
		}
		return nil, err
	}
	// scope check via the owning campaign
	if _, err := authorizeCampaign(ctx, u.campaigns, caller, inv.CampaignID); err != nil {
		return nil, err
	}
	return u.setStatus(ctx, order, status)
}

func (u *statusUC) setStatus(ctx context.Context, order *model.Order, status model.OrderStatus) (*model.Order, error) {
	if err := u.orders.UpdateStatus(ctx, repository.NoTX, order.ID, status); err != nil {
		return nil, err
	}
	u.log.Info().Str("order_id", order.ID).Str("from", string(order.Status)).Str("to", string(status)).Msg("order status updated")
	order.Status = status
	order.UpdatedAt = u.now().UTC()
	return order, nil
}

func (u *statusUC) join(ctx context.Context, invites []*model.RecipientInvite, camps map[string]*model.Campaign) ([]*model.GiftStatusRow, error) {
	orderIDs := uniq(len(invites), func(add func(string)) {
		for _, inv := range invites {
			if inv.OrderID != nil {
				add(*inv.OrderID)
			}
		}
	})
	productIDs := uniq(len(invites), func(add func(string)) {
		for _, inv := range invites {
			if inv.SelectedProductID != nil {
				add(*inv.SelectedProductID)
			}
		}
	})

	orders := map[string]*model.Order{}
	if len(orderIDs) > 0 {
		list, err := u.orders.FindByIDs(ctx, repository.NoTX, orderIDs)
		if err != nil {
			return nil, err
		}
		for _, o := range list {
			orders[o.ID] = o
		}
	}
	products := map[string]*model.Product{}
	if len(productIDs) > 0 {
		list, err := u.catalog.FindByIDs(ctx, repository.NoTX, productIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	now := u.now()
	rows := make([]*model.GiftStatusRow, 0, len(invites))
	for _, inv := range invites {
		row := &model.GiftStatusRow{
			InviteID:      inv.ID,
			CampaignID:    inv.CampaignID,
			Name:          inv.Name,
			Email:         inv.Email,
			LinkExpiresAt: inv.LinkExpiresAt,
			ClaimedAt:     inv.ClaimedAt,
			ProductID:     inv.SelectedProductID,
			OrderID:       inv.OrderID,
		}
		if c, ok := camps[inv.CampaignID]; ok {
			row.CampaignName = c.Name
		}
		if inv.SelectedProductID != nil {
			if p, ok := products[*inv.SelectedProductID]; ok {
				row.ProductName = p.Name
			}
		}
		var order *model.Order
		if inv.OrderID != nil {
			order = orders[*inv.OrderID]
		}
		if order != nil {
			row.OrderNumber = order.OrderNumber
			row.OrderStatus = order.Status
		}
		row.DisplayStatus = model.DeriveDisplayStatus(inv, order, now)
		rows = append(rows, row)
	}
	return rows, nil
}

// uniq collects distinct non-empty ids in first-seen order.
func uniq(hint int, fill func(add func(string))) []string {
	seen := make(map[string]struct{}, hint)
	out := make([]string, 0, hint)
	fill(func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	})
	return out
}
