package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reactions_processed_total",
		Help: "The total number of reaction mutations by subject and action",
	}, []string{"subject", "action"})

	reportsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reports_processed_total",
		Help: "The total number of filed and decided reports",
	}, []string{"subject", "operation"})

	accountsLocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_accounts_auto_locked_total",
		Help: "The total number of accounts locked by warning escalation",
	})

	notificationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_notifications_processed_total",
		Help: "The total number of notification attempts",
	}, []string{"type", "status"})

	countersReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_counters_reconciled_total",
		Help: "The total number of reconciled reaction counters",
	}, []string{"subject", "drift"})
)
