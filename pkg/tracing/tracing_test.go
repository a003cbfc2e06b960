package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return rec
}

func TestClientSpanPropagatesToServer(t *testing.T) {
	rec := useRecorder(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	ctx, span := StartClientSpan(context.Background(), "login", req.Header)
	req = req.WithContext(ctx)
	assert.NotEmpty(t, req.Header.Get("traceparent"))

	r.ServeHTTP(httptest.NewRecorder(), req)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	server, client := spans[0], spans[1]
	assert.Equal(t, "POST /login", server.Name())
	assert.Equal(t, client.SpanContext().TraceID(), server.SpanContext().TraceID())
}
