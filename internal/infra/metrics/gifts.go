package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		invitesIssuedTotal,
		redemptionChecksTotal,
		selectionCommitsTotal,
		compensationsTotal,
		tokenFallbackTotal,
	)
}

var (
	invitesIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_invites_issued_total",
			Help: "Invites created, labeled by source (upload/roster).",
		},
		[]string{"source"},
	)

	redemptionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_redemption_checks_total",
			Help: "Token resolutions by outcome (ok/not_found/claimed/expired/error).",
		},
		[]string{"outcome"},
	)

	selectionCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_selection_commits_total",
			Help: "Selection commits by outcome.",
		},
		[]string{"outcome"},
	)

	compensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_order_compensations_total",
			Help: "Compensating order deletions by step and result.",
		},
		[]string{"step", "result"},
	)

	tokenFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_token_fallback_total",
			Help: "Tokens generated from the non-cryptographic fallback source.",
		},
	)
)

func AddInvitesIssued(source string, n int) {
	invitesIssuedTotal.WithLabelValues(norm(source)).Add(float64(n))
}

func IncRedemptionCheck(outcome string) {
	redemptionChecksTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSelectionCommit(outcome string) {
	selectionCommitsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncCompensation(step, result string) {
	compensationsTotal.WithLabelValues(norm(step), norm(result)).Inc()
}

func IncTokenFallback() { tokenFallbackTotal.Inc() }
