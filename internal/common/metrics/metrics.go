package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_workflow_runs_completed_total",
			Help: "Total number of workflow runs completed, by route taken",
		},
		[]string{"route"},
	)

	WorkflowRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_workflow_runs_failed_total",
			Help: "Total number of workflow runs that hit the containment path",
		},
		[]string{"stage", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_stage_duration_seconds",
			Help: "Duration of each workflow stage in seconds",
		},
		[]string{"stage"},
	)

	WorkflowRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_workflow_runs_active",
			Help: "Number of workflow runs currently in flight",
		},
	)

	SearchCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_summary_cache_requests_total",
			Help: "Summary cache lookups, by outcome (hit or miss)",
		},
		[]string{"outcome"},
	)
)
