package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "career_connect",
	Subsystem: "ledger",
	Name:      "applications_submitted_total",
	Help:      "Number of applications accepted into the ledger",
})

var ApplicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "career_connect",
	Subsystem: "ledger",
	Name:      "status_transitions_total",
	Help:      "Number of application status transitions by target status",
}, []string{"status"})

var SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "career_connect",
	Subsystem: "ledger",
	Name:      "side_effect_failures_total",
	Help:      "Number of best-effort side effects that failed after a primary write",
}, []string{"effect"})

var NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "career_connect",
	Subsystem: "notification",
	Name:      "emitted_total",
	Help:      "Number of notifications recorded by type",
}, []string{"type"})

var EmailsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "career_connect",
	Subsystem: "notification",
	Name:      "emails_dispatched_total",
	Help:      "Number of notification emails by outcome",
}, []string{"outcome"})
