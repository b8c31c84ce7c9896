package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/infra/metrics"
)

// SelectionUseCase is the unauthenticated write path: one claim per token.
type SelectionUseCase interface {
	CommitSelection(ctx context.Context, in SelectionInput) (*CommitResult, error)
}

type SelectionInput struct {
	Token               string
	ProductID           string
	ShippingAddress     model.ShippingAddress
	SizeColorPreference *string
}

type CommitResult struct {
	OrderID        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	RecipientEmail string `json:"recipient_email"`
	Success        bool   `json:"success"`
}

// write steps, in order; used to pick the public error and label compensation metrics
const (
	stepOrder    = "order"
	stepLineItem = "line_item"
	stepClaim    = "claim"
	stepCommit   = "commit"
)

const compensationTimeout = 5 * time.Second

// errClaimLost marks a conditional claim write that matched no row.
var errClaimLost = errors.New("claim write matched no unclaimed invite")

var _ SelectionUseCase = (*selectionUC)(nil)

type selectionUC struct {
	invites   repository.InviteRepository
	campaigns repository.CampaignRepository
	catalog   repository.CatalogRepository
	orders    repository.OrderRepository
	tx        repository.TransactionManager
	notify    NotificationUseCase
	now       func() time.Time
	dev       bool
	log       *zerolog.Logger
}

// NewSelectionUseCase wires the commit path. catalog must be the authoritative
// (uncached) store since it prices the order. notify may be nil.
func NewSelectionUseCase(
	invites repository.InviteRepository,
	campaigns repository.CampaignRepository,
	catalog repository.CatalogRepository,
	orders repository.OrderRepository,
	tx repository.TransactionManager,
	notify NotificationUseCase,
	dev bool,
	logger *zerolog.Logger,
) SelectionUseCase {
	l := logger.With().Str("component", "SelectionUC").Logger()
	return &selectionUC{
		invites:   invites,
		campaigns: campaigns,
		catalog:   catalog,
		orders:    orders,
		tx:        tx,
		notify:    notify,
		now:       time.Now,
		dev:       dev,
		log:       &l,
	}
}

// CommitSelection moves an invite from issued to claimed and creates its order.
//
// Order, line item and claim are written in one transaction. The claim is conditional
// on the invite still being unclaimed and unexpired, so of two concurrent commits for
// the same token exactly one succeeds. Whenever the transaction fails, the order is
// also deleted explicitly; the delete is idempotent and covers stores whose
// TransactionManager cannot roll back.
func (u *selectionUC) CommitSelection(ctx context.Context, in SelectionInput) (*CommitResult, error) {
	defer logging.TraceDuration(u.log, "SelectionUC.CommitSelection")()

	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ShippingAddress.Normalize()
	if err := in.ShippingAddress.Validate(); err != nil {
		metrics.IncSelectionCommit("invalid")
		return nil, err
	}
	if in.SizeColorPreference != nil {
		p := strings.TrimSpace(*in.SizeColorPreference)
		if p == "" {
			in.SizeColorPreference = nil
		} else {
			in.SizeColorPreference = &p
		}
	}

	// 1. same check as the read path
	inv, err := resolveInvite(ctx, u.invites, repository.NoTX, in.Token, u.now(), u.log, u.dev)
	if err != nil {
		metrics.IncSelectionCommit("rejected")
		return nil, err
	}
	log := u.log.With().Str("invite_id", inv.ID).Str("campaign_id", inv.CampaignID).Logger()

	// 2. membership, enforced here because the caller may submit any id
	camp, err := u.campaigns.FindByID(ctx, repository.NoTX, inv.CampaignID)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" || !camp.Offers(in.ProductID) {
		metrics.IncSelectionCommit("invalid")
		return nil, domain.ErrProductUnavailable
	}

	// 3. authoritative price
	product, err := u.catalog.FindByID(ctx, repository.NoTX, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncSelectionCommit("invalid")
			return nil, domain.ErrProductUnavailable
		}
		return nil, err
	}
	if !product.Active {
		metrics.IncSelectionCommit("invalid")
		return nil, domain.ErrProductUnavailable
	}
	if !camp.WithinBudget(product.Price) {
		metrics.IncSelectionCommit("invalid")
		return nil, fmt.Errorf("%w: price %d is above budget %d", domain.ErrOverBudget, product.Price, *camp.PerRecipientBudget)
	}

	now := u.now().UTC()
	order := &model.Order{
		ID:                  uuid.NewString(),
		OrderNumber:         newOrderNumber(),
		CampaignRecipientID: inv.ID,
		UserID:              nil,
		Status:              model.OrderStatusPending,
		Total:               product.Price,
		Currency:            product.Currency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	item := &model.OrderLineItem{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  1,
		UnitPrice: product.Price,
		Currency:  product.Currency,
	}
	claim := model.Claim{
		OrderID:             order.ID,
		ProductID:           product.ID,
		ShippingAddress:     in.ShippingAddress,
		SizeColorPreference: in.SizeColorPreference,
		ClaimedAt:           now,
	}

	// 4-6.
	step := stepOrder
	err = u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.orders.Create(ctx, tx, order); err != nil {
			return err
		}
		step = stepLineItem
		if err := u.orders.CreateLineItem(ctx, tx, item); err != nil {
			return err
		}
		step = stepClaim
		ok, err := u.invites.MarkClaimed(ctx, tx, inv.ID, claim)
		if err != nil {
			return err
		}
		if !ok {
			return errClaimLost
		}
		step = stepCommit
		return nil
	})
	if err != nil {
		u.compensate(ctx, order.ID, step, &log)
		switch {
		case errors.Is(err, errClaimLost):
			if inv.IsExpiredAt(u.now()) {
				metrics.IncSelectionCommit("expired")
				return nil, domain.ErrLinkExpired
			}
			metrics.IncSelectionCommit("conflict")
			log.Info().Msg("concurrent claim lost the race")
			return nil, domain.ErrAlreadyClaimed
		case step == stepOrder || step == stepLineItem:
			metrics.IncSelectionCommit("order_failed")
			log.Error().Err(err).Str("step", step).Msg("order write failed")
			return nil, domain.ErrOrderCreateFailed
		default:
			metrics.IncSelectionCommit("claim_failed")
			log.Error().Err(err).Str("step", step).Msg("claim write failed")
			return nil, domain.ErrSelectionSaveFailed
		}
	}

	metrics.IncSelectionCommit("ok")
	log.Info().Str("order_id", order.ID).Str("order_number", order.OrderNumber).Msg("selection committed")

	// 7. best effort
	if u.notify != nil {
		u.notify.NotifySelectionConfirmed(ctx, inv, order, product)
	}

	return &CommitResult{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		RecipientEmail: inv.Email,
		Success:        true,
	}, nil
}

// compensate deletes the order created by a failed attempt. It runs on a context
// detached from the request so a client disconnect cannot skip it.
func (u *selectionUC) compensate(ctx context.Context, orderID, step string, log *zerolog.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if err := u.orders.Delete(cctx, repository.NoTX, orderID); err != nil {
		metrics.IncCompensation(step, "failed")
		// left for the orphan reconciler
		log.Error().Err(err).Str("order_id", orderID).Str("step", step).Msg("compensating order delete failed")
		return
	}
	metrics.IncCompensation(step, "ok")
}

// newOrderNumber returns a sortable, human-quotable order reference.
func newOrderNumber() string {
	return "GFT-" + ulid.Make().String()
}
