package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware_LogsByStatus(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-5")
		c.Next()
	})
	r.Use(GinMiddleware(zap.New(core)))
	r.Use(func(c *gin.Context) {
		c.Set("organization_id", "org-3")
		c.Next()
	})
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req-5", GetRequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	r.GET("/conflict", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for path, want := range map[string]zapcore.Level{
		"/ok":       zapcore.InfoLevel,
		"/conflict": zapcore.WarnLevel,
		"/boom":     zapcore.ErrorLevel,
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path+"?page=2", nil))

		logs := recorded.TakeAll()
		require.Len(t, logs, 1, path)
		assert.Equal(t, want, logs[0].Level, path)
		fields := logs[0].ContextMap()
		assert.Equal(t, "req-5", fields["request_id"])
		assert.Equal(t, "org-3", fields["organization_id"])
		assert.Equal(t, "page=2", fields["query"])
	}
}

func TestRecovery_AnswersWithEnvelope(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-9")
		c.Next()
	})
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("ledger corrupted") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "ERR_INTERNAL", body.Error.Code)
	assert.Equal(t, "req-9", body.Error.RequestID)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}
