package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// requestsTotal counts adoption request lifecycle events by outcome
	// (created, cancelled).
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_requests_total",
			Help: "Adoption requests created or cancelled.",
		},
		[]string{"outcome"},
	)

	// decisionsTotal counts owner decisions by result (approved, rejected).
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_decisions_total",
			Help: "Owner decisions on adoption requests.",
		},
		[]string{"decision"},
	)

	// siblingsRejected counts pending requests auto-rejected by an approval.
	siblingsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_sibling_rejections_total",
			Help: "Pending requests rejected because another request for the same pet was approved.",
		},
	)

	// workflowConflicts counts precondition conflicts per operation; a spike
	// usually means clients are racing each other.
	workflowConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_workflow_conflicts_total",
			Help: "Workflow operations refused with a state conflict.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, decisionsTotal, siblingsRejected, workflowConflicts)
}

// countConflict records err against op when it is a conflict.
func countConflict(op string, err error) {
	if Kind(err) == ErrConflict {
		workflowConflicts.WithLabelValues(op).Inc()
	}
}
