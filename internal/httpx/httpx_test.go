package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(nil), CORS())
	r.GET("/x", func(c *gin.Context) {
		RawJSON(c, http.StatusOK, []byte(`{"id":"`+RequestIDFrom(c)+`"}`))
	})
	r.GET("/fail", func(c *gin.Context) {
		Error(c, http.StatusBadGateway, "upstream down")
	})
	return r
}

func TestCORS(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status=%d want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PATCH,PUT,DELETE" {
		t.Fatalf("allow-methods=%q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("get status=%d headers=%v", w.Code, w.Header())
	}
}

func TestRequestID(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("request id=%q want inbound value", got)
	}
	if w.Body.String() != `{"id":"abc-123"}` {
		t.Fatalf("body=%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if _, err := uuid.Parse(w.Header().Get(HeaderRequestID)); err != nil {
		t.Fatalf("minted id is not a uuid: %v", err)
	}
}

func TestError(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != `{"error":"upstream down"}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}
