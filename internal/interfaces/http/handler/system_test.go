package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/infrastructure/persistence"
)

type stubProbe struct {
	pingErr error
}

func (p stubProbe) Ping() error { return p.pingErr }

func (p stubProbe) Stats() (persistence.ConnectionStats, error) {
	return persistence.ConnectionStats{MaxOpenConnections: 10, OpenConnections: 2}, nil
}

func systemRequest(t *testing.T, handle gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handle(c)
	data, _ := decodeResponse(t, w).Data.(map[string]any)
	return w, data
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("flowi-ledger", "1.2.0", nil)

	w, data := systemRequest(t, h.GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "flowi-ledger", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("flowi-ledger", "dev", nil)

	w, data := systemRequest(t, h.Ping)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", data["message"])
	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		w, data := systemRequest(t, NewSystemHandler("x", "dev", stubProbe{}).Health)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", data["database"])
		assert.NotNil(t, data["pool"])
	})

	t.Run("database down", func(t *testing.T) {
		w, data := systemRequest(t, NewSystemHandler("x", "dev", stubProbe{pingErr: errors.New("refused")}).Health)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unreachable", data["database"])
	})

	t.Run("no database", func(t *testing.T) {
		w, data := systemRequest(t, NewSystemHandler("x", "dev", nil).Health)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "disabled", data["database"])
	})
}
