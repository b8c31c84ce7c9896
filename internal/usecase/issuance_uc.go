package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/metrics"
)

// IssuanceUseCase bulk-creates recipient invites for a campaign.
type IssuanceUseCase interface {
	// IssueInvites creates one invite per recipient in a single all-or-nothing write.
	IssueInvites(ctx context.Context, caller *model.Caller, campaignID string, recipients []model.RecipientInput, linkExpiresAt *time.Time) (*IssueResult, error)
	// IssueFromRoster draws recipients from the campaign organization's active roster.
	IssueFromRoster(ctx context.Context, caller *model.Caller, campaignID string, filter RosterFilter, linkExpiresAt *time.Time) (*IssueResult, error)
}

// RosterFilter narrows the roster; zero value selects every active employee.
type RosterFilter struct {
	Department string `json:"department,omitempty"`
}

type IssuedInvite struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Token         string     `json:"token"`
	Link          string     `json:"link"`
	LinkExpiresAt *time.Time `json:"link_expires_at,omitempty"`
}

type IssueResult struct {
	Count   int            `json:"count"`
	Invites []IssuedInvite `json:"invites"`
}

var _ IssuanceUseCase = (*issuanceUC)(nil)

type issuanceUC struct {
	campaigns repository.CampaignRepository
	invites   repository.InviteRepository
	employees repository.EmployeeRepository
	tokens    *TokenGenerator
	baseURL   string
	now       func() time.Time
	log       *zerolog.Logger
}

func NewIssuanceUseCase(
	campaigns repository.CampaignRepository,
	invites repository.InviteRepository,
	employees repository.EmployeeRepository,
	tokens *TokenGenerator,
	baseURL string,
	logger *zerolog.Logger,
) IssuanceUseCase {
	l := logger.With().Str("component", "IssuanceUC").Logger()
	return &issuanceUC{
		campaigns: campaigns,
		invites:   invites,
		employees: employees,
		tokens:    tokens,
		baseURL:   baseURL,
		now:       time.Now,
		log:       &l,
	}
}

func (u *issuanceUC) IssueInvites(ctx context.Context, caller *model.Caller, campaignID string, recipients []model.RecipientInput, linkExpiresAt *time.Time) (*IssueResult, error) {
	camp, err := authorizeCampaign(ctx, u.campaigns, caller, campaignID)
	if err != nil {
		return nil, err
	}
	return u.issue(ctx, camp, recipients, linkExpiresAt, "upload")
}

func (u *issuanceUC) IssueFromRoster(ctx context.Context, caller *model.Caller, campaignID string, filter RosterFilter, linkExpiresAt *time.Time) (*IssueResult, error) {
	camp, err := authorizeCampaign(ctx, u.campaigns, caller, campaignID)
	if err != nil {
		return nil, err
	}
	staff, err := u.employees.ListActive(ctx, repository.NoTX, camp.OrganizationID, strings.TrimSpace(filter.Department))
	if err != nil {
		return nil, err
	}
	recipients := make([]model.RecipientInput, 0, len(staff))
	for _, e := range staff {
		recipients = append(recipients, e.AsRecipient())
	}
	return u.issue(ctx, camp, recipients, linkExpiresAt, "roster")
}

func (u *issuanceUC) issue(ctx context.Context, camp *model.Campaign, recipients []model.RecipientInput, linkExpiresAt *time.Time, source string) (*IssueResult, error) {
	now := u.now()
	if linkExpiresAt != nil && !linkExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: link expiry must be in the future", domain.ErrValidation)
	}
	rows, err := normalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	var expires *time.Time
	if linkExpiresAt != nil {
		e := linkExpiresAt.UTC()
		expires = &e
	}

	invites := make([]*model.RecipientInvite, 0, len(rows))
	for _, r := range rows {
		invites = append(invites, &model.RecipientInvite{
			ID:            uuid.NewString(),
			CampaignID:    camp.ID,
			Name:          r.Name,
			Email:         r.Email,
			Designation:   r.Designation,
			Department:    r.Department,
			Phone:         r.Phone,
			Token:         u.tokens.Generate(),
			LinkExpiresAt: expires,
			CreatedAt:     now,
		})
	}

	if err := u.invites.CreateBatch(ctx, repository.NoTX, invites); err != nil {
		u.log.Error().Err(err).Str("campaign_id", camp.ID).Int("rows", len(invites)).Msg("bulk invite write failed")
		return nil, err
	}
	metrics.AddInvitesIssued(source, len(invites))
	u.log.Info().Str("campaign_id", camp.ID).Str("source", source).Int("count", len(invites)).Msg("invites issued")

	res := &IssueResult{Count: len(invites), Invites: make([]IssuedInvite, 0, len(invites))}
	for _, inv := range invites {
		res.Invites = append(res.Invites, IssuedInvite{
			ID:            inv.ID,
			Name:          inv.Name,
			Email:         inv.Email,
			Token:         inv.Token,
			Link:          BuildRedemptionLink(u.baseURL, inv.Token),
			LinkExpiresAt: inv.LinkExpiresAt,
		})
	}
	return res, nil
}

// normalizeRecipients trims rows, lower-cases emails and rejects malformed or duplicate rows.
func normalizeRecipients(in []model.RecipientInput) ([]model.RecipientInput, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: no recipients", domain.ErrValidation)
	}
	seen := make(map[string]int, len(in))
	out := make([]model.RecipientInput, 0, len(in))
	for i, r := range in {
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
		r.Designation = strings.TrimSpace(r.Designation)
		r.Department = strings.TrimSpace(r.Department)
		r.Phone = strings.TrimSpace(r.Phone)

		if r.Name == "" {
			return nil, fmt.Errorf("%w: row %d: name is required", domain.ErrValidation, i+1)
		}
		addr, err := mail.ParseAddress(r.Email)
		if err != nil || addr.Address != r.Email {
			return nil, fmt.Errorf("%w: row %d: invalid email %q", domain.ErrValidation, i+1, r.Email)
		}
		if prev, dup := seen[r.Email]; dup {
			return nil, fmt.Errorf("%w: row %d: duplicate of row %d (%s)", domain.ErrValidation, i+1, prev, r.Email)
		}
		seen[r.Email] = i + 1
		out = append(out, r)
	}
	return out, nil
}

// authorizeCampaign enforces the staff scope shared by issuance, dispatch and status reads.
// A role without issuing rights fails with ErrForbidden before any lookup; a campaign in
// another organization is reported as missing.
func authorizeCampaign(ctx context.Context, campaigns repository.CampaignRepository, caller *model.Caller, campaignID string) (*model.Campaign, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if !caller.IsPrivileged() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(campaignID) == "" {
		return nil, domain.ErrNotFound
	}
	camp, err := campaigns.FindByID(ctx, repository.NoTX, campaignID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !caller.CanManage(camp.OrganizationID) {
		return nil, domain.ErrNotFound
	}
	return camp, nil
}
