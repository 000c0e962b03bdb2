// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	NutritionCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrition_calculations_total",
			Help: "Engine evaluations by operation",
		},
		[]string{"operation"},
	)

	NutritionGoalClamped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrition_goal_clamped_total",
			Help: "Calorie goals adjusted by the deficit clamp or the calorie floor",
		},
		[]string{"goal_type"},
	)

	NutritionProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrition_provider_requests_total",
			Help: "Third-party nutrition API lookups by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	RecipeSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_searches_total",
			Help: "Recipe index queries by query type and outcome",
		},
		[]string{"query_type", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP API latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveJob records the outcome of a single job. An empty errorCode marks
// the job as completed.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func RecordCalculation(operation string) {
	NutritionCalculations.WithLabelValues(operation).Inc()
}

func RecordClamp(goalType string) {
	NutritionGoalClamped.WithLabelValues(goalType).Inc()
}

func RecordProviderRequest(provider, outcome string) {
	NutritionProviderRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordSearch counts a recipe query. outcome is "ok" or an error code.
func RecordSearch(queryType, outcome string) {
	RecipeSearches.WithLabelValues(queryType, outcome).Inc()
}

func ObserveHTTP(route, method string, status int, started time.Time) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(started).Seconds())
}
