package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"corporate-gifting/internal/config"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/web"
	"corporate-gifting/internal/usecase"
)

// Deps groups everything the HTTP layer calls into.
type Deps struct {
	Redemption    usecase.RedemptionUseCase
	Selection     usecase.SelectionUseCase
	Issuance      usecase.IssuanceUseCase
	Notifications usecase.NotificationUseCase
	Status        usecase.StatusUseCase

	Auth       *web.AuthManager
	Identities adapter.IdentityResolver
	Limiter    Limiter // nil disables throttling

	Throttle       config.ThrottleConfig
	RequestTimeout time.Duration
	TrustProxy     bool
}

type Server struct {
	redemption    usecase.RedemptionUseCase
	selection     usecase.SelectionUseCase
	issuance      usecase.IssuanceUseCase
	notifications usecase.NotificationUseCase
	status        usecase.StatusUseCase

	auth       *web.AuthManager
	identities adapter.IdentityResolver
	limiter    Limiter

	throttle   config.ThrottleConfig
	timeout    time.Duration
	trustProxy bool
	log        *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTP").Logger()
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 15 * time.Second
	}
	return &Server{
		redemption:    d.Redemption,
		selection:     d.Selection,
		issuance:      d.Issuance,
		notifications: d.Notifications,
		status:        d.Status,
		auth:          d.Auth,
		identities:    d.Identities,
		limiter:       d.Limiter,
		throttle:      d.Throttle,
		timeout:       d.RequestTimeout,
		trustProxy:    d.TrustProxy,
		log:           &l,
	}
}

// Routes builds the full router: public token routes, staff API, health and metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		TraceID(),
		Metrics(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.timeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/g/{token}", func(r chi.Router) {
		r.Use(s.Throttle())
		r.Get("/", s.handleCatalogView)
		r.Get("/status", s.handleTokenStatus)
		r.Post("/select", s.handleSelect)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(web.RequireStaff(s.auth, s.identities, s.writeError, s.log))

		r.Route("/campaigns/{campaignID}", func(r chi.Router) {
			r.Post("/invites", s.handleIssueInvites)
			r.Post("/invites/roster", s.handleIssueFromRoster)
			r.Post("/notifications", s.handleSendNotifications)
			r.Get("/recipients", s.handleCampaignRecipients)
		})
		r.Get("/me/gifts", s.handleMyGifts)
		r.Patch("/orders/{orderID}/status", s.handleUpdateOrderStatus)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}
