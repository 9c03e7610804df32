package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AnalysisCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_analyses_total",
			Help: "Total number of exam analysis requests by outcome",
		},
		[]string{"status"},
	)

	FairnessScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exam_fairness_score",
			Help:    "Distribution of computed fairness scores",
			Buckets: []float64{40, 55, 70, 85, 100},
		},
	)

	AIFallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallback_total",
			Help: "Classification calls served by the deterministic fallback",
		},
		[]string{"task"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(AnalysisCounter)
	prometheus.MustRegister(FairnessScoreHistogram)
	prometheus.MustRegister(AIFallbackCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordAnalysis 记录一次完成的分析及其公平性得分
func RecordAnalysis(score float64) {
	AnalysisCounter.WithLabelValues("completed").Inc()
	FairnessScoreHistogram.Observe(score)
}

// RecordRejection 记录一次被输入校验拒绝的分析
func RecordRejection() {
	AnalysisCounter.WithLabelValues("rejected").Inc()
}

// RecordFallback 记录一次降级到确定性回退的外部调用
func RecordFallback(task string) {
	AIFallbackCounter.WithLabelValues(task).Inc()
}
