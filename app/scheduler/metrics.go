package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/redelink/redelink/models"
)

var (
	passRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_pass_runs_total",
			Help: "Total number of completed reminder passes",
		},
	)

	remindersSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of billing reminders dispatched",
		},
	)

	remindersSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_skipped_total",
			Help: "Total number of reminders skipped, partitioned by reason",
		},
		[]string{"reason"},
	)

	remindersErroredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_errored_total",
			Help: "Total number of reminder sends that failed",
		},
	)

	lastPassContractsEvaluated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_last_pass_contracts_evaluated",
			Help: "Contracts evaluated by the most recent reminder pass",
		},
	)
)

func recordPassMetrics(run *models.ReminderPassRun) {
	passRunsTotal.Inc()
	remindersSentTotal.Add(float64(run.RemindersSent))
	remindersSkippedTotal.WithLabelValues("cooldown").Add(float64(run.SkippedCooldown))
	remindersSkippedTotal.WithLabelValues("invalid_phone").Add(float64(run.SkippedInvalidPhone))
	remindersErroredTotal.Add(float64(run.Errored))
	lastPassContractsEvaluated.Set(float64(run.ContractsEvaluated))
}
