package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/config"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/api"
	pg "corporate-gifting/internal/infra/db/postgres"
	"corporate-gifting/internal/infra/i18n"
	"corporate-gifting/internal/infra/logging"
	"corporate-gifting/internal/infra/metrics"
	"corporate-gifting/internal/infra/notify"
	red "corporate-gifting/internal/infra/redis"
	"corporate-gifting/internal/infra/sched"
	"corporate-gifting/internal/infra/web"
	"corporate-gifting/internal/infra/worker"
	"corporate-gifting/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted tokens)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("service stopped with error")
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	go metrics.RunPoolSampler(ctx, 15*time.Second, pg.PoolStats(pool))

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	limiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	inviteRepo := pg.NewInviteRepo(pool)
	campaignRepo := pg.NewCampaignRepo(pool)
	catalogRepo := pg.NewCatalogRepo(pool)
	cachedCatalog := pg.NewCatalogRepoCacheDecorator(catalogRepo, redisClient, cfg.Redis.TTL, logger)
	orderRepo := pg.NewOrderRepo(pool)
	employeeRepo := pg.NewEmployeeRepo(pool)
	identityRepo := pg.NewIdentityRepo(pool)

	// ---- Email ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Email.Lang)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}
	var notifier adapter.Notifier
	switch cfg.Email.Mode {
	case "smtp":
		notifier, err = notify.NewSMTPNotifier(cfg.Email, translator, cfg.Runtime.Dev, logger)
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
	default:
		notifier = notify.NewLogNotifier(translator, cfg.Runtime.Dev, logger)
	}

	// ---- Background workers ----
	workers := worker.NewPool(cfg.Worker.Workers, cfg.Worker.Queue, logger)
	// detached so Stop can drain queued confirmations after the signal
	workers.Start(context.WithoutCancel(ctx))
	defer workers.Stop()

	if cfg.Reconciler.Enabled {
		reconciler := sched.NewOrphanReconciler(orderRepo, cfg.Reconciler.Interval, cfg.Reconciler.GraceAge, logger)
		go func() { _ = reconciler.Run(ctx) }()
	}

	// ---- Use cases ----
	tokens := usecase.NewTokenGenerator(logger)
	notificationUC := usecase.NewNotificationUseCase(campaignRepo, inviteRepo, notifier, workers, cfg.Links.BaseURL, cfg.Runtime.Dev, logger)
	issuanceUC := usecase.NewIssuanceUseCase(campaignRepo, inviteRepo, employeeRepo, tokens, cfg.Links.BaseURL, logger)
	redemptionUC := usecase.NewRedemptionUseCase(inviteRepo, campaignRepo, cachedCatalog, cfg.Runtime.Dev, logger)
	selectionUC := usecase.NewSelectionUseCase(inviteRepo, campaignRepo, catalogRepo, orderRepo, txManager, notificationUC, cfg.Runtime.Dev, logger)
	statusUC := usecase.NewStatusUseCase(inviteRepo, campaignRepo, cachedCatalog, orderRepo, logger)

	// ---- HTTP ----
	srv := api.NewServer(api.Deps{
		Redemption:     redemptionUC,
		Selection:      selectionUC,
		Issuance:       issuanceUC,
		Notifications:  notificationUC,
		Status:         statusUC,
		Auth:           web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Identities:     identityRepo,
		Limiter:        limiter,
		Throttle:       cfg.Throttle,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		TrustProxy:     cfg.HTTP.TrustProxy,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
