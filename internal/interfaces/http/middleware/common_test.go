package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", nil)
		assert.Len(t, w.Body.String(), 32)
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("reuses the client id", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "client-42"})
		assert.Equal(t, "client-42", w.Body.String())
	})

	t.Run("truncates long ids", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: strings.Repeat("x", 500)})
		assert.Len(t, w.Body.String(), MaxRequestIDLength)
	})
}

func TestCORS(t *testing.T) {
	newRouter := func(origins ...string) *gin.Engine {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
		r := gin.New()
		r.Use(CORS(cfg))
		r.GET("/api/v1/articles", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("allowed origin", func(t *testing.T) {
		w := serve(newRouter("http://magazzino.local"), http.MethodGet, "/api/v1/articles",
			map[string]string{"Origin": "http://magazzino.local"})
		assert.Equal(t, "http://magazzino.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		w := serve(newRouter("http://magazzino.local"), http.MethodGet, "/api/v1/articles",
			map[string]string{"Origin": "http://evil.example"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		w := serve(newRouter("*"), http.MethodGet, "/api/v1/articles",
			map[string]string{"Origin": "http://any.example"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight is answered with 204", func(t *testing.T) {
		w := serve(newRouter(), http.MethodOptions, "/api/v1/articles",
			map[string]string{"Origin": "http://magazzino.local"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https:")
}
