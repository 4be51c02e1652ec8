package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tannerv/shopsmith/pkg/models"
)

// MetricsCollector exposes the pipeline's Prometheus metrics.
type MetricsCollector struct {
	recommendationRequests *prometheus.CounterVec
	recommendationLatency  prometheus.Histogram
	recommendationsServed  prometheus.Counter
	explanationFallbacks   prometheus.Counter
	strategyRotations      *prometheus.CounterVec
	feedbackReceived       *prometheus.CounterVec
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		recommendationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by strategy",
		}, []string{"strategy"}),

		recommendationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End to end recommendation pipeline duration",
			Buckets: prometheus.DefBuckets,
		}),

		recommendationsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of individual recommendations returned",
		}),

		explanationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "explanation_fallbacks_total",
			Help: "Explanations served from the deterministic fallback instead of the LLM",
		}),

		strategyRotations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "strategy_rotations_total",
			Help: "Strategy preference rotations triggered by negative feedback",
		}, []string{"from", "to"}),

		feedbackReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_received_total",
			Help: "Feedback values recorded against recommendations",
		}, []string{"value"}),
	}
}

func (mc *MetricsCollector) RecordRecommendation(strategy models.Strategy, count int, duration time.Duration, fallback bool) {
	mc.recommendationRequests.WithLabelValues(string(strategy)).Inc()
	mc.recommendationLatency.Observe(duration.Seconds())
	mc.recommendationsServed.Add(float64(count))
	if fallback {
		mc.explanationFallbacks.Inc()
	}
}

func (mc *MetricsCollector) RecordStrategyRotation(from, to models.Strategy) {
	mc.strategyRotations.WithLabelValues(string(from), string(to)).Inc()
}

func (mc *MetricsCollector) RecordFeedback(value int) {
	label := "positive"
	if value < 0 {
		label = "negative"
	}
	mc.feedbackReceived.WithLabelValues(label).Inc()
}
