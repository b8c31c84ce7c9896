//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

const (
	itOrg      = "org-it"
	itCampaign = "camp-it"
	itProduct  = "prod-it"
)

func seedBase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := testPool.Exec(ctx, `INSERT INTO organizations (id, name) VALUES ($1, 'Acme');`, itOrg); err != nil {
		t.Fatalf("seed org: %v", err)
	}
	budget := int64(5000)
	camp := &model.Campaign{
		ID: itCampaign, OrganizationID: itOrg, Name: "Holidays", PerRecipientBudget: &budget,
		Currency: "USD", SelectedProducts: []string{itProduct}, CreatedAt: time.Now().UTC(),
	}
	if err := NewCampaignRepo(testPool).Save(ctx, repository.NoTX, camp); err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	p := &model.Product{ID: itProduct, Name: "Mug", Price: 1200, Currency: "USD", Active: true}
	if err := NewCatalogRepo(testPool).Save(ctx, repository.NoTX, p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func newInvite(email, token string, expires *time.Time) *model.RecipientInvite {
	return &model.RecipientInvite{
		ID: uuid.NewString(), CampaignID: itCampaign, Name: "R", Email: email,
		Token: token, LinkExpiresAt: expires, CreatedAt: time.Now().UTC(),
	}
}

func hexToken(c byte) string {
	b := make([]byte, 48)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func TestInviteRepo_CreateBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewInviteRepo(testPool)

	t.Run("should insert the whole batch", func(t *testing.T) {
		cleanup(t)
		seedBase(t)
		batch := []*model.RecipientInvite{
			newInvite("a@x.com", hexToken('a'), nil),
			newInvite("b@x.com", hexToken('b'), nil),
		}
		if err := repo.CreateBatch(ctx, repository.NoTX, batch); err != nil {
			t.Fatalf("CreateBatch: %v", err)
		}
		got, err := repo.ListByCampaign(ctx, repository.NoTX, itCampaign)
		if err != nil || len(got) != 2 {
			t.Fatalf("expected 2 invites, got %d (err=%v)", len(got), err)
		}
	})

	t.Run("should leave nothing behind on a duplicate token", func(t *testing.T) {
		cleanup(t)
		seedBase(t)
		batch := []*model.RecipientInvite{
			newInvite("a@x.com", hexToken('c'), nil),
			newInvite("b@x.com", hexToken('c'), nil),
		}
		err := repo.CreateBatch(ctx, repository.NoTX, batch)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		got, _ := repo.ListByCampaign(ctx, repository.NoTX, itCampaign)
		if len(got) != 0 {
			t.Fatalf("expected no rows after a failed batch, got %d", len(got))
		}
	})
}

func TestInviteRepo_FindByToken_NotFound(t *testing.T) {
	cleanup(t)
	_, err := NewInviteRepo(testPool).FindByToken(context.Background(), repository.NoTX, hexToken('f'))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// commitOnce mirrors the selection write path: order, line item, claim.
func commitOnce(ctx context.Context, tm *TxManager, inv *model.RecipientInvite) (string, error) {
	orders := NewOrderRepo(testPool)
	invites := NewInviteRepo(testPool)
	orderID := uuid.NewString()
	errLost := errors.New("claim lost")

	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := time.Now().UTC()
		o := &model.Order{
			ID: orderID, OrderNumber: "GFT-" + orderID, CampaignRecipientID: inv.ID,
			Status: model.OrderStatusPending, Total: 1200, Currency: "USD", CreatedAt: now, UpdatedAt: now,
		}
		if err := orders.Create(ctx, tx, o); err != nil {
			return err
		}
		li := &model.OrderLineItem{ID: uuid.NewString(), OrderID: orderID, ProductID: itProduct, Quantity: 1, UnitPrice: 1200, Currency: "USD"}
		if err := orders.CreateLineItem(ctx, tx, li); err != nil {
			return err
		}
		ok, err := invites.MarkClaimed(ctx, tx, inv.ID, model.Claim{
			OrderID: orderID, ProductID: itProduct, ClaimedAt: now,
			ShippingAddress: model.ShippingAddress{Line1: "1 Main", City: "X", PostalCode: "1", Country: "US"},
		})
		if err != nil {
			return err
		}
		if !ok {
			return errLost
		}
		return nil
	})
	return orderID, err
}

func TestInviteRepo_MarkClaimed_ConcurrentSingleWinner(t *testing.T) {
	cleanup(t)
	seedBase(t)
	ctx := context.Background()
	inv := newInvite("race@x.com", hexToken('d'), nil)
	if err := NewInviteRepo(testPool).CreateBatch(ctx, repository.NoTX, []*model.RecipientInvite{inv}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	tm := NewTxManager(testPool)
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := commitOnce(ctx, tm, inv); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	var orders int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM orders;`).Scan(&orders); err != nil {
		t.Fatal(err)
	}
	if orders != 1 {
		t.Fatalf("rolled back transactions left %d orders", orders)
	}
	got, err := NewInviteRepo(testPool).FindByID(ctx, repository.NoTX, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsClaimed() || got.ShippingAddress == nil || got.ShippingAddress.City != "X" {
		t.Fatalf("claim not persisted: %+v", got)
	}
}

func TestInviteRepo_MarkClaimed_RejectsExpired(t *testing.T) {
	cleanup(t)
	seedBase(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute).UTC()
	inv := newInvite("late@x.com", hexToken('e'), &past)
	if err := NewInviteRepo(testPool).CreateBatch(ctx, repository.NoTX, []*model.RecipientInvite{inv}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if _, err := commitOnce(ctx, NewTxManager(testPool), inv); err == nil {
		t.Fatal("expected the claim on an expired invite to fail")
	}
}

func TestOrderRepo_DeleteAndOrphans(t *testing.T) {
	cleanup(t)
	seedBase(t)
	ctx := context.Background()
	orders := NewOrderRepo(testPool)
	inv := newInvite("o@x.com", hexToken('9'), nil)
	if err := NewInviteRepo(testPool).CreateBatch(ctx, repository.NoTX, []*model.RecipientInvite{inv}); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-time.Hour).UTC()
	orphan := &model.Order{
		ID: uuid.NewString(), OrderNumber: "GFT-ORPHAN", CampaignRecipientID: inv.ID,
		Status: model.OrderStatusPending, Total: 1200, Currency: "USD", CreatedAt: old, UpdatedAt: old,
	}
	if err := orders.Create(ctx, repository.NoTX, orphan); err != nil {
		t.Fatal(err)
	}
	li := &model.OrderLineItem{ID: uuid.NewString(), OrderID: orphan.ID, ProductID: itProduct, Quantity: 1, UnitPrice: 1200, Currency: "USD"}
	if err := orders.CreateLineItem(ctx, repository.NoTX, li); err != nil {
		t.Fatal(err)
	}

	found, err := orders.ListOrphans(ctx, repository.NoTX, time.Now().Add(-10*time.Minute), 10)
	if err != nil || len(found) != 1 || found[0].ID != orphan.ID {
		t.Fatalf("expected the orphan, got %v (err=%v)", found, err)
	}

	if err := orders.Delete(ctx, repository.NoTX, orphan.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var items int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM order_line_items;`).Scan(&items); err != nil {
		t.Fatal(err)
	}
	if items != 0 {
		t.Fatalf("line items should cascade, %d left", items)
	}
	if err := orders.Delete(ctx, repository.NoTX, orphan.ID); err != nil {
		t.Fatalf("deleting a missing order should be a no-op, got %v", err)
	}
	if err := orders.UpdateStatus(ctx, repository.NoTX, orphan.ID, model.OrderStatusShipped); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on a missing order, got %v", err)
	}
}

func TestIdentityRepo_Resolve(t *testing.T) {
	cleanup(t)
	seedBase(t)
	ctx := context.Background()
	repo := NewIdentityRepo(testPool)

	if err := repo.Save(ctx, repository.NoTX, &model.Caller{UserID: "u1", Email: "admin@acme.com", OrganizationID: itOrg, Role: model.RoleCompanyAdmin}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, repository.NoTX, &model.Caller{UserID: "root", Email: "root@platform.com", Role: model.RoleSuperAdmin}); err != nil {
		t.Fatal(err)
	}

	c, err := repo.Resolve(ctx, "u1")
	if err != nil || c.OrganizationID != itOrg || c.Role != model.RoleCompanyAdmin {
		t.Fatalf("unexpected caller %+v (err=%v)", c, err)
	}
	root, err := repo.Resolve(ctx, "root")
	if err != nil || root.OrganizationID != "" || !root.IsSuperAdmin() {
		t.Fatalf("unexpected super admin %+v (err=%v)", root, err)
	}
	if _, err := repo.Resolve(ctx, "nobody"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown user, got %v", err)
	}
}

func TestEmployeeRepo_ListActive(t *testing.T) {
	cleanup(t)
	seedBase(t)
	ctx := context.Background()
	repo := NewEmployeeRepo(testPool)
	for _, e := range []*model.Employee{
		{ID: "e1", OrganizationID: itOrg, Name: "Ann", Email: "ann@acme.com", Department: "Sales", Active: true},
		{ID: "e2", OrganizationID: itOrg, Name: "Bob", Email: "bob@acme.com", Department: "Ops", Active: true},
		{ID: "e3", OrganizationID: itOrg, Name: "Cid", Email: "cid@acme.com", Department: "Sales", Active: false},
	} {
		if err := repo.Save(ctx, repository.NoTX, e); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.ListActive(ctx, repository.NoTX, itOrg, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 active employees, got %d (err=%v)", len(all), err)
	}
	sales, _ := repo.ListActive(ctx, repository.NoTX, itOrg, "Sales")
	if len(sales) != 1 || sales[0].ID != "e1" {
		t.Fatalf("department filter failed: %v", sales)
	}
}
