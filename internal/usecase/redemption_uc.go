package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/infra/metrics"
)

// RedemptionUseCase is the unauthenticated read path for token holders.
type RedemptionUseCase interface {
	// ResolveByToken returns the invite if it is unclaimed and unexpired.
	// Errors: ErrInviteNotFound, ErrAlreadyClaimed, ErrLinkExpired.
	ResolveByToken(ctx context.Context, token string) (*model.RecipientInvite, error)
	// BuildCatalogView assembles the budget-filtered product list for the token's campaign.
	BuildCatalogView(ctx context.Context, token string) (*CatalogView, error)
}

type RecipientView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	LinkExpiresAt *time.Time `json:"link_expires_at,omitempty"`
}

type CampaignSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Budget   *int64 `json:"budget,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// CatalogView is what a recipient sees. NoProductsConfigured distinguishes a campaign
// with an empty product list from one whose products were all filtered out.
type CatalogView struct {
	Recipient            RecipientView    `json:"recipient"`
	Campaign             CampaignSummary  `json:"campaign"`
	Products             []*model.Product `json:"products"`
	NoProductsConfigured bool             `json:"no_products_configured"`
}

var _ RedemptionUseCase = (*redemptionUC)(nil)

type redemptionUC struct {
	invites   repository.InviteRepository
	campaigns repository.CampaignRepository
	catalog   repository.CatalogRepository
	now       func() time.Time
	dev       bool
	log       *zerolog.Logger
}

// NewRedemptionUseCase wires the read path. catalog may be a caching decorator;
// the view tolerates slightly stale prices because the commit path re-reads them.
func NewRedemptionUseCase(
	invites repository.InviteRepository,
	campaigns repository.CampaignRepository,
	catalog repository.CatalogRepository,
	dev bool,
	logger *zerolog.Logger,
) RedemptionUseCase {
	l := logger.With().Str("component", "RedemptionUC").Logger()
	return &redemptionUC{
		invites:   invites,
		campaigns: campaigns,
		catalog:   catalog,
		now:       time.Now,
		dev:       dev,
		log:       &l,
	}
}

func (u *redemptionUC) ResolveByToken(ctx context.Context, token string) (*model.RecipientInvite, error) {
	return resolveInvite(ctx, u.invites, repository.NoTX, token, u.now(), u.log, u.dev)
}

// resolveInvite is the single authoritative token check, shared with the commit path.
func resolveInvite(ctx context.Context, invites repository.InviteRepository, tx repository.Tx, token string, now time.Time, log *zerolog.Logger, dev bool) (*model.RecipientInvite, error) {
	if !IsWellFormedToken(token) {
		metrics.IncRedemptionCheck("not_found")
		return nil, domain.ErrInviteNotFound
	}
	inv, err := invites.FindByToken(ctx, tx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncRedemptionCheck("not_found")
			log.Debug().Str("token", logging.Redact(token, dev)).Msg("token not found")
			return nil, domain.ErrInviteNotFound
		}
		metrics.IncRedemptionCheck("error")
		return nil, err
	}
	// Expiry wins over claim state: a dead link reports Expired whether or not it was used.
	if inv.IsExpiredAt(now) {
		metrics.IncRedemptionCheck("expired")
		log.Debug().Str("invite_id", inv.ID).Time("expired_at", *inv.LinkExpiresAt).Msg("token expired")
		return nil, domain.ErrLinkExpired
	}
	if inv.IsClaimed() {
		metrics.IncRedemptionCheck("claimed")
		log.Debug().Str("invite_id", inv.ID).Msg("token already claimed")
		return nil, domain.ErrAlreadyClaimed
	}
	metrics.IncRedemptionCheck("ok")
	return inv, nil
}

func (u *redemptionUC) BuildCatalogView(ctx context.Context, token string) (*CatalogView, error) {
	inv, err := u.ResolveByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	camp, err := u.campaigns.FindByID(ctx, repository.NoTX, inv.CampaignID)
	if err != nil {
		return nil, err
	}

	view := &CatalogView{
		Recipient: RecipientView{
			ID:            inv.ID,
			Name:          inv.Name,
			Email:         inv.Email,
			LinkExpiresAt: inv.LinkExpiresAt,
		},
		Campaign: CampaignSummary{
			ID:       camp.ID,
			Name:     camp.Name,
			Budget:   camp.PerRecipientBudget,
			Currency: camp.Currency,
		},
		Products: []*model.Product{},
	}
	if len(camp.SelectedProducts) == 0 {
		view.NoProductsConfigured = true
		return view, nil
	}

	products, err := u.catalog.FindByIDs(ctx, repository.NoTX, camp.SelectedProducts)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	// campaign order, so repeated reads return the same list
	for _, id := range camp.SelectedProducts {
		p, ok := byID[id]
		if !ok || !p.Active || !camp.WithinBudget(p.Price) {
			continue
		}
		view.Products = append(view.Products, p)
	}
	return view, nil
}
