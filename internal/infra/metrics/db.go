package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dbPoolStats) }

var dbPoolStats = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_pool_stats",
		Help: "Current state of the database connection pool.",
	},
	[]string{"state"}, // 'total', 'idle', 'in_use'
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

// PoolStatter is satisfied by a closure over pgxpool.Pool.Stat().
type PoolStatter func() (total, idle, inUse int32)

// RunPoolSampler refreshes db_pool_stats every interval until ctx is done.
func RunPoolSampler(ctx context.Context, interval time.Duration, stat PoolStatter) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		SetDBPoolStats(stat())
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
