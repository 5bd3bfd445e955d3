package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "RevenueCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	tests := map[string]struct {
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantCode   int
	}{
		"wildcard echoes origin": {
			origins: []string{"*"}, origin: "http://farm.local", method: http.MethodGet,
			wantOrigin: "http://farm.local", wantCode: http.StatusOK,
		},
		"preflight short-circuits": {
			origins: []string{"*"}, origin: "http://farm.local", method: http.MethodOptions,
			wantOrigin: "http://farm.local", wantCode: http.StatusNoContent,
		},
		"unknown origin gets no header": {
			origins: []string{"http://a.local"}, origin: "http://b.local", method: http.MethodGet,
			wantOrigin: "", wantCode: http.StatusOK,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			h := CORS(CORSConfig{AllowOrigins: tc.origins, AllowMethods: []string{"GET", "POST"}})(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			req := httptest.NewRequest(tc.method, "/predict", nil)
			req.Header.Set(echo.HeaderOrigin, tc.origin)
			rec := httptest.NewRecorder()

			assert.NoError(t, h(e.NewContext(req, rec)))
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
}

func TestRecoverWritesLegacyBody(t *testing.T) {
	var buf bytes.Buffer
	l := applogger.NewWithWriter(&buf, zerolog.InfoLevel)

	e := echo.New()
	h := Recover(l)(func(c echo.Context) error { panic("boom") })
	rec := httptest.NewRecorder()

	assert.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestMetricsLogsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	l := applogger.NewWithWriter(&buf, zerolog.InfoLevel)

	e := echo.New()
	e.Use(Metrics(l, 0))
	e.GET("/fail", func(c echo.Context) error { return c.NoContent(http.StatusServiceUnavailable) })
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/ok", "/fail"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Contains(t, buf.String(), `"route":"/fail"`)
	assert.NotContains(t, buf.String(), `"route":"/ok"`)
}
