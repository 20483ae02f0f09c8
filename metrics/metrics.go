package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Agent metrics
	AgentInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_agent_invocations_total",
			Help: "Total number of agent invocations",
		},
		[]string{"role", "status"},
	)

	AgentInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_agent_invocation_duration_seconds",
			Help:    "Agent invocation duration in seconds, model call included",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"role"},
	)

	// Routing metrics
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_routing_decisions_total",
			Help: "Router decisions by chosen next agent",
		},
		[]string{"next_agent"},
	)

	// Run metrics
	Runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_total",
			Help: "Research runs by outcome",
		},
		[]string{"outcome"},
	)

	RunSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_run_steps",
			Help:    "Graph steps executed per research run",
			Buckets: []float64{5, 10, 15, 20, 30, 40, 60, 100},
		},
	)

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_search_requests_total",
			Help: "Search provider requests by status",
		},
		[]string{"status"},
	)
)

// RecordAgentInvocation records one agent call.
func RecordAgentInvocation(role string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AgentInvocations.WithLabelValues(role, status).Inc()
	AgentInvocationDuration.WithLabelValues(role).Observe(seconds)
}

// RecordRun records the outcome and length of one research run.
func RecordRun(outcome string, steps int) {
	Runs.WithLabelValues(outcome).Inc()
	RunSteps.Observe(float64(steps))
}
