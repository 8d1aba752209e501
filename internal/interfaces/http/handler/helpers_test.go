package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/interfaces/http/dto"
	"github.com/flowi/backend/internal/interfaces/http/middleware"
)

var testOrgID = uuid.MustParse("0b6f3c5e-8d0a-4c6e-9f51-2a7d4f1e9c01")

func newTestEngine(register func(g *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Organization(middleware.OrganizationConfig{Default: testOrgID}))
	register(r.Group(""))
	return r
}

func doRequest(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}
