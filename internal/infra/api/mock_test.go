//go:build !integration

package api_test

import (
	"context"
	"sync"
	"time"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/usecase"
)

//
// ---------------- use case doubles ----------------
//

type mockRedemption struct {
	view   *usecase.CatalogView
	invite *model.RecipientInvite
	err    error
	tokens []string
}

func (m *mockRedemption) ResolveByToken(_ context.Context, token string) (*model.RecipientInvite, error) {
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return nil, m.err
	}
	return m.invite, nil
}

func (m *mockRedemption) BuildCatalogView(_ context.Context, token string) (*usecase.CatalogView, error) {
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return nil, m.err
	}
	return m.view, nil
}

type mockSelection struct {
	got    *usecase.SelectionInput
	result *usecase.CommitResult
	err    error
}

func (m *mockSelection) CommitSelection(_ context.Context, in usecase.SelectionInput) (*usecase.CommitResult, error) {
	m.got = &in
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockIssuance struct {
	caller     *model.Caller
	campaignID string
	recipients []model.RecipientInput
	expires    *time.Time
	filter     usecase.RosterFilter
	err        error
}

func (m *mockIssuance) IssueInvites(_ context.Context, caller *model.Caller, campaignID string, recipients []model.RecipientInput, expires *time.Time) (*usecase.IssueResult, error) {
	m.caller, m.campaignID, m.recipients, m.expires = caller, campaignID, recipients, expires
	if m.err != nil {
		return nil, m.err
	}
	res := &usecase.IssueResult{Count: len(recipients), Invites: []usecase.IssuedInvite{}}
	for _, r := range recipients {
		res.Invites = append(res.Invites, usecase.IssuedInvite{Name: r.Name, Email: r.Email})
	}
	return res, nil
}

func (m *mockIssuance) IssueFromRoster(_ context.Context, caller *model.Caller, campaignID string, filter usecase.RosterFilter, expires *time.Time) (*usecase.IssueResult, error) {
	m.caller, m.campaignID, m.filter, m.expires = caller, campaignID, filter, expires
	if m.err != nil {
		return nil, m.err
	}
	return &usecase.IssueResult{Count: 0, Invites: []usecase.IssuedInvite{}}, nil
}

type mockNotifications struct {
	report *usecase.DispatchReport
	err    error
}

func (m *mockNotifications) SendInviteNotifications(context.Context, *model.Caller, string) (*usecase.DispatchReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockNotifications) NotifySelectionConfirmed(context.Context, *model.RecipientInvite, *model.Order, *model.Product) {
}

type mockStatus struct {
	rows   []*model.GiftStatusRow
	order  *model.Order
	status model.OrderStatus
	err    error
}

func (m *mockStatus) ListForCampaign(context.Context, *model.Caller, string) ([]*model.GiftStatusRow, error) {
	return m.rows, m.err
}

func (m *mockStatus) ListForRecipient(_ context.Context, caller *model.Caller) ([]*model.GiftStatusRow, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	return m.rows, m.err
}

func (m *mockStatus) UpdateOrderStatus(_ context.Context, _ *model.Caller, orderID string, status model.OrderStatus) (*model.Order, error) {
	m.status = status
	if m.err != nil {
		return nil, m.err
	}
	o := *m.order
	o.ID = orderID
	o.Status = status
	return &o, nil
}

//
// ---------------- infra doubles ----------------
//

type mockIdentities struct {
	callers map[string]*model.Caller
}

func (m *mockIdentities) Resolve(_ context.Context, userID string) (*model.Caller, error) {
	c, ok := m.callers[userID]
	if !ok {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// countingLimiter allows `limit` hits per key and ignores the window.
type countingLimiter struct {
	mu   sync.Mutex
	hits map[string]int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits = map[string]int{}
	}
	l.hits[key]++
	return l.hits[key] <= limit, nil
}
