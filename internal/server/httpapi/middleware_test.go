package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pixology/pixology-server/internal/errs"
)

func TestRecover_CatchesPanic(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(Recover(zaptest.NewLogger(t)))
	r.GET("/panic", func(*gin.Context) { panic("oh no") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	r := gin.New()
	r.Use(Instrument(m), Logging(zaptest.NewLogger(t)))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	for _, p := range []string{"/items/1", "/items/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	require.Contains(t, body, `pixology_http_requests_total{method="GET",route="/items/:id",status="418"} 2`)
	require.Contains(t, body, `pixology_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, body, `pixology_http_request_duration_seconds_count{method="GET",route="/items/:id"} 2`)
}

func TestWriteError_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{errs.Validationf("name is required"), http.StatusBadRequest, "name is required"},
		{errs.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errs.ErrForbidden, http.StatusForbidden, "project belongs to another user"},
		{errs.ErrNotFound, http.StatusNotFound, "not found"},
		{errs.ErrRateLimited, http.StatusTooManyRequests, "too many failed attempts, try later"},
		{errs.ErrDataIntegrity, http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		writeError(c, zaptest.NewLogger(t), tc.err)
		require.Equal(t, tc.code, w.Code, tc.err.Error())
		require.JSONEq(t, `{"error":"`+tc.msg+`"}`, w.Body.String())
	}
}
