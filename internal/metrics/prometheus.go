// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the billboard watch service.
var (
	// Counters.
	ReportsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_submitted_total",
			Help: "Total number of billboard reports submitted",
		},
		[]string{"severity"},
	)

	ReportStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_status_transitions_total",
			Help: "Total number of report lifecycle transitions",
		},
		[]string{"status"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points credited or debited, by action",
		},
		[]string{"action"},
	)

	AchievementsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_awarded_total",
			Help: "Total number of achievements awarded",
		},
		[]string{"achievement"},
	)

	RewardRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_redemptions_total",
			Help: "Total reward redemption attempts",
		},
		[]string{"reward", "status"},
	)

	AnalysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total AI analysis requests by final outcome",
		},
		[]string{"status"},
	)

	AnalysisRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_retries_total",
			Help: "Total AI analysis retry attempts by error code",
		},
		[]string{"code"},
	)

	// Gauges.
	AchievementHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "achievement_holders",
			Help: "Current number of accounts holding each achievement",
		},
		[]string{"achievement"},
	)

	LeaderboardSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_size",
			Help: "Number of entries in the most recently built leaderboard",
		},
	)

	EvaluationJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_evaluation_jobs_run_total",
			Help: "Total achievement evaluation job executions",
		},
		[]string{"status"},
	)

	// Histograms.
	AnalysisRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_request_duration_seconds",
			Help:    "Wall time of an AI analysis call including retries",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	EvaluationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "achievement_evaluation_duration_seconds",
			Help:    "Time taken to execute an achievement evaluation job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~41s
		},
	)
)

// RecordReportSubmitted records a submitted report.
func RecordReportSubmitted(severity string) {
	ReportsSubmittedTotal.WithLabelValues(severity).Inc()
}

// RecordStatusTransition records a report lifecycle transition.
func RecordStatusTransition(status string) {
	ReportStatusTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordPointsAwarded records a point mutation.
func RecordPointsAwarded(action string, delta int) {
	PointsAwardedTotal.WithLabelValues(action).Add(float64(delta))
}

// RecordAchievementAwarded records an achievement award event.
func RecordAchievementAwarded(achievementID string) {
	AchievementsAwardedTotal.WithLabelValues(achievementID).Inc()
}

// SetAchievementHolders sets the number of holders for an achievement.
func SetAchievementHolders(achievementID string, count int) {
	AchievementHolders.WithLabelValues(achievementID).Set(float64(count))
}

// SetLeaderboardSize sets the size of the last built leaderboard.
func SetLeaderboardSize(size int) {
	LeaderboardSize.Set(float64(size))
}

// RecordRedemption records a reward redemption attempt.
func RecordRedemption(rewardID, status string) {
	RewardRedemptionsTotal.WithLabelValues(rewardID, status).Inc()
}

// RecordAnalysisRequest records the final outcome of an analysis call.
func RecordAnalysisRequest(status string) {
	AnalysisRequestsTotal.WithLabelValues(status).Inc()
}

// RecordAnalysisRetry records a retry attempt.
func RecordAnalysisRetry(code string) {
	AnalysisRetriesTotal.WithLabelValues(code).Inc()
}

// ObserveAnalysisDuration observes the duration of an analysis call.
func ObserveAnalysisDuration(seconds float64) {
	AnalysisRequestDurationSeconds.Observe(seconds)
}

// RecordEvaluationRun records an achievement evaluation job execution.
func RecordEvaluationRun(status string) {
	EvaluationJobsRunTotal.WithLabelValues(status).Inc()
}

// ObserveEvaluationDuration observes the duration of an evaluation job.
func ObserveEvaluationDuration(seconds float64) {
	EvaluationDurationSeconds.Observe(seconds)
}
