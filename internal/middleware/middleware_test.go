package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-media-api/internal/config"
	"github.com/iliyamo/social-media-api/internal/logging"
)

func TestRequestLogger_AssignsAndPropagatesID(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.New("dev", "info", &buf)))

	var seen string
	e.GET("/messages", func(c echo.Context) error {
		seen = logging.RequestID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.Len(t, id, 36)
	assert.Equal(t, id, seen)
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), "status=200")
}

func TestRequestLogger_KeepsClientID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(logging.Nop()))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "client-id", rec.Header().Get(RequestIDHeader))
}

func TestNewRedisCache_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil, nil))
	e.GET("/messages", func(c echo.Context) error { return c.String(http.StatusOK, "[]") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))

	assert.Equal(t, "[]", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCacheKeyFrom_Strategies(t *testing.T) {
	e := echo.New()
	newCtx := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/accounts/:account_id/messages")
		return c
	}

	routeQuery := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	a := cacheKeyFrom(routeQuery, newCtx("/accounts/1/messages?x=1"))
	b := cacheKeyFrom(routeQuery, newCtx("/accounts/1/messages?x=2"))
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, a)

	assert.NotEqual(t,
		cacheKeyFrom(routeQuery, newCtx("/accounts/1/messages")),
		cacheKeyFrom(routeQuery, newCtx("/accounts/2/messages")))

	route := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	assert.Equal(t,
		cacheKeyFrom(route, newCtx("/accounts/1/messages?x=1")),
		cacheKeyFrom(route, newCtx("/accounts/1/messages?x=2")))
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))

	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
	assert.Equal(t, "abcdef", rec.Body.String())
}
