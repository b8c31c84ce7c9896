package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v4"

	"corporate-gifting/internal/config"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	pg "corporate-gifting/internal/infra/db/postgres"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/infra/web"
	"corporate-gifting/internal/usecase"
)

const (
	demoOrg      = "org-demo"
	demoCampaign = "camp-demo"
	demoAdmin    = "user-demo-admin"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	issue := flag.Bool("issue", true, "issue invites for the demo roster")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	campaigns := pg.NewCampaignRepo(pool)
	catalog := pg.NewCatalogRepo(pool)
	employees := pg.NewEmployeeRepo(pool)
	identities := pg.NewIdentityRepo(pool)

	budget := int64(5000)
	products := []*model.Product{
		{ID: "prod-mug", Name: "Ceramic Mug", Description: "Stoneware, 350 ml", Price: 1800, Currency: "USD", Active: true},
		{ID: "prod-hoodie", Name: "Logo Hoodie", Description: "Sizes S to XXL", Price: 4500, Currency: "USD", Active: true},
		{ID: "prod-headphones", Name: "Headphones", Description: "Over-ear, wireless", Price: 12900, Currency: "USD", Active: true},
	}
	roster := []*model.Employee{
		{ID: "emp-1", OrganizationID: demoOrg, Name: "Ann Lee", Email: "ann@example.com", Department: "Sales", Active: true},
		{ID: "emp-2", OrganizationID: demoOrg, Name: "Bo Chen", Email: "bo@example.com", Department: "Engineering", Active: true},
		{ID: "emp-3", OrganizationID: demoOrg, Name: "Cy Diaz", Email: "cy@example.com", Department: "Engineering", Active: true},
	}

	err = pg.NewTxManager(pool).WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.(pgx.Tx).Exec(ctx,
			`INSERT INTO organizations (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING;`, demoOrg, "Demo Corp"); err != nil {
			return fmt.Errorf("organization: %w", err)
		}
		if err := identities.Save(ctx, tx, &model.Caller{UserID: demoAdmin, Email: "admin@example.com", OrganizationID: demoOrg, Role: model.RoleCompanyAdmin}); err != nil {
			return fmt.Errorf("staff: %w", err)
		}
		for _, p := range products {
			if err := catalog.Save(ctx, tx, p); err != nil {
				return fmt.Errorf("product %s: %w", p.ID, err)
			}
		}
		for _, e := range roster {
			if err := employees.Save(ctx, tx, e); err != nil {
				return fmt.Errorf("employee %s: %w", e.ID, err)
			}
		}
		return campaigns.Save(ctx, tx, &model.Campaign{
			ID:                 demoCampaign,
			OrganizationID:     demoOrg,
			Name:               "Year End Thanks",
			PerRecipientBudget: &budget,
			Currency:           "USD",
			SelectedProducts:   []string{"prod-mug", "prod-hoodie", "prod-headphones"},
			CreatedAt:          time.Now().UTC(),
		})
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("seed")
	}
	fmt.Printf("seeded organization %s, campaign %s, %d products, %d employees\n", demoOrg, demoCampaign, len(products), len(roster))

	token, err := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL).Mint(demoAdmin)
	if err != nil {
		logger.Fatal().Err(err).Msg("mint admin token")
	}
	fmt.Printf("admin bearer token:\n  %s\n", token)

	if !*issue {
		return
	}
	issuance := usecase.NewIssuanceUseCase(campaigns, pg.NewInviteRepo(pool), employees, usecase.NewTokenGenerator(logger), cfg.Links.BaseURL, logger)
	admin, err := identities.Resolve(ctx, demoAdmin)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve admin")
	}
	expires := time.Now().Add(14 * 24 * time.Hour).UTC()
	res, err := issuance.IssueFromRoster(ctx, admin, demoCampaign, usecase.RosterFilter{}, &expires)
	if err != nil {
		logger.Fatal().Err(err).Msg("issue invites")
	}
	fmt.Printf("issued %d invites:\n", res.Count)
	for _, inv := range res.Invites {
		fmt.Printf("  - %-20s %s\n", inv.Email, inv.Link)
	}
}
