//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/worker"
)

// -----------------------------
// Utilities
// -----------------------------

func ptr[T any](v T) *T { return &v }

func hoursFromNow(h int) *time.Time {
	t := time.Now().Add(time.Duration(h) * time.Hour)
	return &t
}

// =============================
// Repositories
// =============================

// ---- memInviteRepo ----

type memInviteRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.RecipientInvite
	order  []string
	tokens map[string]string // token -> id

	CreateBatchErr error
	MarkClaimedErr error
	FindErr        error
	ClaimCalls     int
}

var _ repository.InviteRepository = (*memInviteRepo)(nil)

func newMemInviteRepo() *memInviteRepo {
	return &memInviteRepo{byID: map[string]*model.RecipientInvite{}, tokens: map[string]string{}}
}

func cloneInvite(in *model.RecipientInvite) *model.RecipientInvite {
	cp := *in
	if in.ShippingAddress != nil {
		a := *in.ShippingAddress
		cp.ShippingAddress = &a
	}
	return &cp
}

func (m *memInviteRepo) put(inv *model.RecipientInvite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[inv.ID]; !ok {
		m.order = append(m.order, inv.ID)
	}
	m.byID[inv.ID] = cloneInvite(inv)
	m.tokens[inv.Token] = inv.ID
}

func (m *memInviteRepo) get(id string) *model.RecipientInvite {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.byID[id]; ok {
		return cloneInvite(inv)
	}
	return nil
}

func (m *memInviteRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memInviteRepo) CreateBatch(ctx context.Context, tx repository.Tx, invites []*model.RecipientInvite) error {
	if m.CreateBatchErr != nil {
		return m.CreateBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// validate the whole batch first: all or nothing
	seen := map[string]struct{}{}
	for _, inv := range invites {
		if _, ok := m.tokens[inv.Token]; ok {
			return domain.ErrAlreadyExists
		}
		if _, ok := seen[inv.Token]; ok {
			return domain.ErrAlreadyExists
		}
		seen[inv.Token] = struct{}{}
	}
	for _, inv := range invites {
		m.byID[inv.ID] = cloneInvite(inv)
		m.tokens[inv.Token] = inv.ID
		m.order = append(m.order, inv.ID)
	}
	return nil
}

func (m *memInviteRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.RecipientInvite, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneInvite(m.byID[id]), nil
}

func (m *memInviteRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecipientInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneInvite(inv), nil
}

// MarkClaimed mirrors the store's conditional update: unclaimed and not yet expired.
func (m *memInviteRepo) MarkClaimed(ctx context.Context, tx repository.Tx, inviteID string, claim model.Claim) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimCalls++
	if m.MarkClaimedErr != nil {
		return false, m.MarkClaimedErr
	}
	inv, ok := m.byID[inviteID]
	if !ok || inv.ClaimedAt != nil || inv.IsExpiredAt(claim.ClaimedAt) {
		return false, nil
	}
	addr := claim.ShippingAddress
	at := claim.ClaimedAt
	inv.ClaimedAt = &at
	inv.OrderID = ptr(claim.OrderID)
	inv.SelectedProductID = ptr(claim.ProductID)
	inv.ShippingAddress = &addr
	inv.SizeColorPreference = claim.SizeColorPreference
	return true, nil
}

func (m *memInviteRepo) list(keep func(*model.RecipientInvite) bool) []*model.RecipientInvite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.RecipientInvite{}
	for _, id := range m.order {
		if inv := m.byID[id]; keep(inv) {
			out = append(out, cloneInvite(inv))
		}
	}
	return out
}

func (m *memInviteRepo) ListByCampaign(ctx context.Context, tx repository.Tx, campaignID string) ([]*model.RecipientInvite, error) {
	return m.list(func(i *model.RecipientInvite) bool { return i.CampaignID == campaignID }), nil
}

func (m *memInviteRepo) ListUnclaimedByCampaign(ctx context.Context, tx repository.Tx, campaignID string) ([]*model.RecipientInvite, error) {
	return m.list(func(i *model.RecipientInvite) bool { return i.CampaignID == campaignID && i.ClaimedAt == nil }), nil
}

func (m *memInviteRepo) ListByEmail(ctx context.Context, tx repository.Tx, email string) ([]*model.RecipientInvite, error) {
	return m.list(func(i *model.RecipientInvite) bool { return i.Email == email }), nil
}

// ---- memCampaignRepo ----

type memCampaignRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Campaign
}

var _ repository.CampaignRepository = (*memCampaignRepo)(nil)

func newMemCampaignRepo(cs ...*model.Campaign) *memCampaignRepo {
	m := &memCampaignRepo{store: map[string]*model.Campaign{}}
	for _, c := range cs {
		m.store[c.ID] = c
	}
	return m
}

func (m *memCampaignRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCampaignRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Campaign
	for _, id := range ids {
		if c, ok := m.store[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCampaignRepo) Save(ctx context.Context, tx repository.Tx, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

// ---- memCatalogRepo ----

type memCatalogRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Product
	Reads int
}

var _ repository.CatalogRepository = (*memCatalogRepo)(nil)

func newMemCatalogRepo(ps ...*model.Product) *memCatalogRepo {
	m := &memCatalogRepo{store: map[string]*model.Product{}}
	for _, p := range ps {
		m.store[p.ID] = p
	}
	return m
}

func (m *memCatalogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memCatalogRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	var out []*model.Product
	for _, id := range ids {
		if p, ok := m.store[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	// return in store order, not request order, like an unordered IN query
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memCatalogRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

// ---- memOrderRepo ----

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	items  map[string][]*model.OrderLineItem

	CreateErr   error
	LineItemErr error
	DeleteErr   error
	Deleted     []string
}

var _ repository.OrderRepository = (*memOrderRepo)(nil)

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]*model.Order{}, items: map[string][]*model.OrderLineItem{}}
}

func (m *memOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memOrderRepo) itemsFor(orderID string) []*model.OrderLineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.OrderLineItem(nil), m.items[orderID]...)
}

func (m *memOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) CreateLineItem(ctx context.Context, tx repository.Tx, li *model.OrderLineItem) error {
	if m.LineItemErr != nil {
		return m.LineItemErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[li.OrderID]; !ok {
		return domain.ErrNotFound
	}
	cp := *li
	m.items[li.OrderID] = append(m.items[li.OrderID], &cp)
	return nil
}

func (m *memOrderRepo) Delete(ctx context.Context, tx repository.Tx, orderID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, orderID)
	delete(m.orders, orderID)
	delete(m.items, orderID)
	return nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, tx repository.Tx, orderID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, id := range ids {
		if o, ok := m.orders[id]; ok {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListOrphans(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	return nil, nil
}

// ---- memEmployeeRepo ----

type memEmployeeRepo struct {
	mu    sync.Mutex
	staff []*model.Employee
}

var _ repository.EmployeeRepository = (*memEmployeeRepo)(nil)

func (m *memEmployeeRepo) ListActive(ctx context.Context, tx repository.Tx, orgID, department string) ([]*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Employee
	for _, e := range m.staff {
		if e.OrganizationID != orgID || !e.Active {
			continue
		}
		if department != "" && e.Department != department {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memEmployeeRepo) Save(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.staff = append(m.staff, &cp)
	return nil
}

// ---- mockTxManager ----

// mockTxManager runs fn directly. It cannot roll back, so tests also exercise
// the compensating delete.
type mockTxManager struct {
	mu        sync.Mutex
	Calls     int
	CommitErr error
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.Calls++
	commitErr := m.CommitErr
	m.mu.Unlock()
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return commitErr
}

// =============================
// Adapters
// =============================

// ---- mockNotifier ----

type mockNotifier struct {
	mu            sync.Mutex
	Invites       []adapter.InviteMessage
	Confirmations []adapter.ConfirmationMessage

	FailFor         map[string]error // by recipient email
	ConfirmationErr error
}

var _ adapter.Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) SendInvite(ctx context.Context, msg adapter.InviteMessage) error {
	if err, ok := m.FailFor[msg.To]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invites = append(m.Invites, msg)
	return nil
}

func (m *mockNotifier) SendConfirmation(ctx context.Context, msg adapter.ConfirmationMessage) error {
	if m.ConfirmationErr != nil {
		return m.ConfirmationErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, msg)
	return nil
}

func (m *mockNotifier) confirmations() []adapter.ConfirmationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]adapter.ConfirmationMessage(nil), m.Confirmations...)
}

// ---- inlineSubmitter ----

// inlineSubmitter runs tasks synchronously so tests can assert on their effects.
type inlineSubmitter struct {
	mu        sync.Mutex
	Submitted int
	Err       error
}

func (s *inlineSubmitter) Submit(task worker.Task) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	s.Submitted++
	s.mu.Unlock()
	_ = task(context.Background())
	return nil
}
