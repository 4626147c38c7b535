// Package metrics holds the Prometheus collectors of the matching core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "herohub"

var RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "requests",
	Name:      "created_total",
	Help:      "Total service requests created.",
})

var RequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "requests",
	Name:      "transitions_total",
	Help:      "Total request status transitions by target status.",
}, []string{"to"})

var ProviderChoices = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "requests",
	Name:      "provider_choices_total",
	Help:      "Total provider selections by outcome (assigned, conflict, compensated).",
}, []string{"outcome"})

var AcceptancesCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "acceptances",
	Name:      "created_total",
	Help:      "Total acceptances recorded.",
})

var AcceptanceConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "acceptances",
	Name:      "conflicts_total",
	Help:      "Duplicate acceptances rejected by the store.",
})

// RollbackFailures counts provider selections whose compensating step
// failed. Every increment needs manual reconciliation.
var RollbackFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "rollback_failures_total",
	Help:      "Provider selections left with a chosen acceptance and an unassigned request.",
})

var WalletTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "wallet",
	Name:      "transactions_total",
	Help:      "Wallet transactions recorded by type.",
}, []string{"type"})

var WalletRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "wallet",
	Name:      "rejections_total",
	Help:      "Wallet operations rejected by reason.",
}, []string{"reason"})

var WithdrawalsRequested = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "wallet",
	Name:      "withdrawals_requested_total",
	Help:      "Withdrawal requests accepted for processing.",
})

var NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notify",
	Name:      "failures_total",
	Help:      "Change notifications that could not be delivered, by event.",
}, []string{"event"})

var RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "realtime",
	Name:      "clients",
	Help:      "Currently connected websocket clients.",
})
