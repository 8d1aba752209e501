package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	entries := NewDomainGroup("/entries").
		GET("", reply("list")).
		POST("/:id/payments", reply("paid")).
		DELETE("/:id", reply("deleted"))
	rates := NewDomainGroup("/rates").GET("/current", reply("36.5"))

	NewRouter(engine).Register(entries).Register(rates).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/entries", "list"},
		{http.MethodPost, "/api/v1/entries/42/payments", "paid"},
		{http.MethodDelete, "/api/v1/entries/42", "deleted"},
		{http.MethodGet, "/api/v1/rates/current", "36.5"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}
}

func TestRouterSetup_UnknownMethod(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(NewDomainGroup("/sales").GET("", reply("ok"))).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/sales", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Scoped", "yes")
		c.Next()
	})
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.Register(NewDomainGroup("/plans").GET("/inside", reply("ok"))).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/plans/inside", nil))
	assert.Equal(t, "yes", w.Header().Get("X-Scoped"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Empty(t, w.Header().Get("X-Scoped"))
}

func TestRouterUse_AbortSkipsHandler(t *testing.T) {
	engine := gin.New()
	called := false
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusBadRequest)
	})
	r.Register(NewDomainGroup("/entries").GET("", func(c *gin.Context) { called = true })).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}
