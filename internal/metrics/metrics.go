package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement counts settlement operations by outcome.
type Settlement struct {
	Purchases            *prometheus.CounterVec
	Payouts              *prometheus.CounterVec
	Deposits             *prometheus.CounterVec
	Withdrawals          *prometheus.CounterVec
	SkippedDistributions prometheus.Counter
}

// NewSettlement registers settlement counters with reg.
func NewSettlement(reg prometheus.Registerer) *Settlement {
	factory := promauto.With(reg)
	return &Settlement{
		Purchases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_token_purchases_total",
			Help: "Token purchase settlements by status",
		}, []string{"status"}),
		Payouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_rent_payouts_total",
			Help: "Rent payout settlements by status",
		}, []string{"status"}),
		Deposits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_wallet_deposits_total",
			Help: "Wallet deposits by status",
		}, []string{"status"}),
		Withdrawals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_wallet_withdrawals_total",
			Help: "Wallet withdrawals by status",
		}, []string{"status"}),
		SkippedDistributions: factory.NewCounter(prometheus.CounterOpts{
			Name: "settlement_skipped_distributions_total",
			Help: "Rent distributions skipped due to missing ownership rows",
		}),
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
