package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddleware(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/quiz/:id", func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 3})
		c.Status(http.StatusInternalServerError)
	})
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/quiz/42", "/api/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/quiz/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
