//go:build !integration

package usecase_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/usecase"
)

const (
	testOrgID      = "org-1"
	testCampaignID = "camp-1"
	testBaseURL    = "https://gifts.example.com"
)

type fixture struct {
	invites   *memInviteRepo
	campaigns *memCampaignRepo
	catalog   *memCatalogRepo
	orders    *memOrderRepo
	employees *memEmployeeRepo
	tx        *mockTxManager
	notifier  *mockNotifier
	pool      *inlineSubmitter
	tokens    *usecase.TokenGenerator

	issuance      usecase.IssuanceUseCase
	redemption    usecase.RedemptionUseCase
	selection     usecase.SelectionUseCase
	status        usecase.StatusUseCase
	notifications usecase.NotificationUseCase

	admin *model.Caller
}

// newFixture builds a campaign with a budget of 500 offering a 300 and a 600 product.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Nop()

	f := &fixture{
		invites: newMemInviteRepo(),
		campaigns: newMemCampaignRepo(&model.Campaign{
			ID:                 testCampaignID,
			OrganizationID:     testOrgID,
			Name:               "Year End 2026",
			PerRecipientBudget: ptr(int64(500)),
			Currency:           "USD",
			SelectedProducts:   []string{"p300", "p600"},
			CreatedAt:          time.Now(),
		}),
		catalog: newMemCatalogRepo(
			&model.Product{ID: "p300", Name: "Desk Plant", Price: 300, Currency: "USD", Active: true},
			&model.Product{ID: "p600", Name: "Headphones", Price: 600, Currency: "USD", Active: true},
		),
		orders:    newMemOrderRepo(),
		employees: &memEmployeeRepo{},
		tx:        &mockTxManager{},
		notifier:  &mockNotifier{},
		pool:      &inlineSubmitter{},
		tokens:    usecase.NewTokenGenerator(log),
		admin:     &model.Caller{UserID: "u-admin", Email: "admin@acme.test", OrganizationID: testOrgID, Role: model.RoleCompanyAdmin},
	}

	f.notifications = usecase.NewNotificationUseCase(f.campaigns, f.invites, f.notifier, f.pool, testBaseURL, false, log)
	f.issuance = usecase.NewIssuanceUseCase(f.campaigns, f.invites, f.employees, f.tokens, testBaseURL, log)
	f.redemption = usecase.NewRedemptionUseCase(f.invites, f.campaigns, f.catalog, false, log)
	f.selection = usecase.NewSelectionUseCase(f.invites, f.campaigns, f.catalog, f.orders, f.tx, f.notifications, false, log)
	f.status = usecase.NewStatusUseCase(f.invites, f.campaigns, f.catalog, f.orders, log)
	return f
}

// seedInvite stores an unclaimed invite for the fixture campaign.
func (f *fixture) seedInvite(email string, expires *time.Time) *model.RecipientInvite {
	inv := &model.RecipientInvite{
		ID:            uuid.NewString(),
		CampaignID:    testCampaignID,
		Name:          "Recipient " + email,
		Email:         email,
		Token:         f.tokens.Generate(),
		LinkExpiresAt: expires,
		CreatedAt:     time.Now(),
	}
	f.invites.put(inv)
	return inv
}

func validAddress() model.ShippingAddress {
	return model.ShippingAddress{
		RecipientName: "Ada Lovelace",
		Line1:         "12 Analytical Way",
		City:          "London",
		PostalCode:    "N1 9GU",
		Country:       "gb",
	}
}

func selectionFor(inv *model.RecipientInvite, productID string) usecase.SelectionInput {
	return usecase.SelectionInput{Token: inv.Token, ProductID: productID, ShippingAddress: validAddress()}
}
