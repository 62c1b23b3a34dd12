package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/rythudepot/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareAssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	var seen string
	r.GET("/api/farmers", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/farmers", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-Id"))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/farmers", entries[0].ContextMap()["route"])
	assert.Equal(t, seen, entries[0].ContextMap()["request_id"])
}

func TestGinMiddlewareKeepsUpstreamRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL(`SELECT * FROM "depot_collections"`))
	assert.Equal(t, "UPSERT", operationFromSQL(`INSERT INTO "depot_collections" VALUES (1) ON CONFLICT ("collection_key") DO UPDATE SET "payload"="excluded"."payload"`))
	assert.Equal(t, "INSERT", operationFromSQL(`INSERT INTO x VALUES (1)`))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestWithContextNilSafe(t *testing.T) {
	assert.Nil(t, WithContext(context.Background(), nil))
}

func TestGinMiddlewareLogsRefusalsAtWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "conflict", "undo_expired" },
	}))
	r.POST("/api/undo", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusConflict)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/undo", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "undo", fields["entity"])
	assert.Equal(t, "conflict", fields["error_type"])
	assert.Equal(t, "undo_expired", fields["error_code"])
}

func TestGormParamsFilterRedactsPayloads(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "INSERT ...", "depot_farmers", []byte("secret"), "Ravi Kumar", nil)

	assert.Equal(t, "INSERT ...", sql)
	require.Len(t, params, 4)
	assert.Equal(t, "depot_farmers", params[0])
	assert.Equal(t, "<6 bytes>", params[1])
	assert.Equal(t, "<redacted>", params[2])
	assert.Nil(t, params[3])
}
