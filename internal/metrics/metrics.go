package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "sync_runs_total",
			Help:      "Tier sync runs by tier and result.",
		},
		[]string{"tier", "result"},
	)

	keywordActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "keyword_actions_total",
			Help:      "Keyword engine actions by action and result.",
		},
		[]string{"action", "result"},
	)

	validationMismatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "validation_mismatches_total",
			Help:      "Entity classes that disagreed with the remote count.",
		},
		[]string{"entity_type"},
	)

	rollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "rollbacks_total",
			Help:      "Completed rollback passes.",
		},
	)

	schedulerErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "scheduler_errors_total",
			Help:      "Per-account sync failures recorded by the scheduler.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(syncRuns, keywordActions, validationMismatches, rollbacks, schedulerErrors)
	})
}

// IncSyncRun increments the tier sync counter for a result label.
func IncSyncRun(tier, result string) {
	syncRuns.WithLabelValues(tier, result).Inc()
}

// IncKeywordAction increments the engine action counter.
func IncKeywordAction(action, result string) {
	keywordActions.WithLabelValues(action, result).Inc()
}

// IncValidationMismatch increments the mismatch counter for an entity class.
func IncValidationMismatch(entityType string) {
	validationMismatches.WithLabelValues(entityType).Inc()
}

// IncRollback increments the rollback counter.
func IncRollback() {
	rollbacks.Inc()
}

// IncSchedulerError increments the scheduler failure counter.
func IncSchedulerError() {
	schedulerErrors.Inc()
}
