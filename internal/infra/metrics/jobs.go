package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, orphanOrdersRemovedTotal, workerTasksTotal) }

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_notifications_total",
			Help: "Emails attempted, labeled by kind (invite/confirmation) and status (sent/failed/skipped).",
		},
		[]string{"kind", "status"},
	)

	orphanOrdersRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_orphan_orders_removed_total",
			Help: "Orders removed by the reconciler because no invite references them.",
		},
	)

	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Background tasks by result (ok/error/dropped).",
		},
		[]string{"result"},
	)
)

func IncNotification(kind, status string) {
	notificationsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func AddOrphanOrdersRemoved(n int) {
	orphanOrdersRemovedTotal.Add(float64(n))
}

func IncWorkerTask(result string) {
	workerTasksTotal.WithLabelValues(norm(result)).Inc()
}
