package monitoring

import (
	"strconv"
	"sync"
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

	// 文本生成服务调用
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of text generation requests",
		},
		[]string{"model", "purpose", "success"},
	)

	LLMDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of text generation requests",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
		[]string{"model"},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens consumed by text generation requests",
		},
		[]string{"model", "direction"},
	)

	// 出题结果：generated / fallback
	QuestionsAcquired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_questions_acquired_total",
			Help: "Questions handed out, by source",
		},
		[]string{"source"},
	)

	GenerationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generation_attempts_total",
			Help: "Question generation attempts, by outcome",
		},
		[]string{"outcome"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Submitted quizzes, by difficulty band",
		},
		[]string{"difficulty"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(LLMRequests)
		prometheus.MustRegister(LLMDuration)
		prometheus.MustRegister(LLMTokens)
		prometheus.MustRegister(QuestionsAcquired)
		prometheus.MustRegister(GenerationAttempts)
		prometheus.MustRegister(QuizSubmissions)
	})
}

// MetricsMiddleware 按路由模板统计，未匹配的路径合并为 unmatched 以免标签膨胀
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
