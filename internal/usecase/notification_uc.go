package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/infra/metrics"
	"corporate-gifting/internal/infra/worker"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// SendInviteNotifications emails every unclaimed, unexpired invite of the campaign.
	// Expired links are counted as skipped. Per-recipient failures are collected
	// in the report and never abort the batch.
	SendInviteNotifications(ctx context.Context, caller *model.Caller, campaignID string) (*DispatchReport, error)
	// NotifySelectionConfirmed queues the confirmation email for a committed selection.
	NotifySelectionConfirmed(ctx context.Context, inv *model.RecipientInvite, order *model.Order, product *model.Product)
}

type DispatchError struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type DispatchReport struct {
	Sent    int             `json:"sent"`
	Total   int             `json:"total"`
	Skipped int             `json:"skipped"`
	Errors  []DispatchError `json:"errors"`
}

// TaskSubmitter is the part of worker.Pool used for fire-and-forget email.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

const sendTimeout = 10 * time.Second

type notificationUC struct {
	campaigns repository.CampaignRepository
	invites   repository.InviteRepository
	notifier  adapter.Notifier
	pool      TaskSubmitter
	baseURL   string
	now       func() time.Time
	dev       bool
	log       *zerolog.Logger
}

// NewNotificationUseCase wires email dispatch. When pool is nil confirmations are sent inline.
func NewNotificationUseCase(
	campaigns repository.CampaignRepository,
	invites repository.InviteRepository,
	notifier adapter.Notifier,
	pool TaskSubmitter,
	baseURL string,
	dev bool,
	logger *zerolog.Logger,
) NotificationUseCase {
	l := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{
		campaigns: campaigns,
		invites:   invites,
		notifier:  notifier,
		pool:      pool,
		baseURL:   baseURL,
		now:       time.Now,
		dev:       dev,
		log:       &l,
	}
}

func (n *notificationUC) SendInviteNotifications(ctx context.Context, caller *model.Caller, campaignID string) (*DispatchReport, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.SendInviteNotifications")()

	camp, err := authorizeCampaign(ctx, n.campaigns, caller, campaignID)
	if err != nil {
		return nil, err
	}
	pending, err := n.invites.ListUnclaimedByCampaign(ctx, repository.NoTX, camp.ID)
	if err != nil {
		return nil, err
	}

	now := n.now()
	report := &DispatchReport{Total: len(pending), Errors: []DispatchError{}}
	for _, inv := range pending {
		if inv.IsExpiredAt(now) {
			metrics.IncNotification("invite", "skipped")
			report.Skipped++
			continue
		}
		msg := adapter.InviteMessage{
			To:           inv.Email,
			Name:         inv.Name,
			CampaignName: camp.Name,
			Link:         BuildRedemptionLink(n.baseURL, inv.Token),
			ExpiresAt:    inv.LinkExpiresAt,
		}
		if err := n.notifier.SendInvite(ctx, msg); err != nil {
			metrics.IncNotification("invite", "failed")
			n.log.Warn().Err(err).Str("invite_id", inv.ID).Str("email", logging.Redact(inv.Email, n.dev)).Msg("invite email failed")
			report.Errors = append(report.Errors, DispatchError{Email: inv.Email, Reason: err.Error()})
			continue
		}
		metrics.IncNotification("invite", "sent")
		report.Sent++
	}

	n.log.Info().Str("campaign_id", camp.ID).Int("sent", report.Sent).Int("skipped", report.Skipped).Int("total", report.Total).Msg("invite notifications dispatched")
	return report, nil
}

func (n *notificationUC) NotifySelectionConfirmed(ctx context.Context, inv *model.RecipientInvite, order *model.Order, product *model.Product) {
	msg := adapter.ConfirmationMessage{
		To:          inv.Email,
		Name:        inv.Name,
		OrderNumber: order.OrderNumber,
		ProductName: product.Name,
	}
	task := func(ctx context.Context) error {
		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := n.notifier.SendConfirmation(sctx, msg); err != nil {
			metrics.IncNotification("confirmation", "failed")
			return err
		}
		metrics.IncNotification("confirmation", "sent")
		return nil
	}

	if n.pool == nil {
		if err := task(context.WithoutCancel(ctx)); err != nil {
			n.log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("confirmation email failed")
		}
		return
	}
	if err := n.pool.Submit(task); err != nil {
		metrics.IncNotification("confirmation", "dropped")
		n.log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("confirmation email not queued")
	}
}
