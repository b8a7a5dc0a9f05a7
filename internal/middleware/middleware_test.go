package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/config"
	"github.com/iliyamo/imagen-studio/internal/utils"
)

const testSecret = "test-secret"

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("", mw...)
	g.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "email": Email(c), "role": Role(c)})
	})
	return e
}

func doGet(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/me", "garbage").Code)

	tok, err := utils.NewAccessToken(testSecret, 7, "ann@example.com", "user", 5)
	require.NoError(t, err)
	rec := doGet(e, "/me", tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"ok":true,"email":"ann@example.com","role":"user"}`, rec.Body.String())
}

func TestOptionalJWTLetsAnonymousThrough(t *testing.T) {
	e := protectedEcho(OptionalJWT(testSecret))

	rec := doGet(e, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":0,"ok":false,"email":"","role":""}`, rec.Body.String())

	tok, err := utils.NewAccessToken(testSecret, 3, "b@example.com", "admin", 5)
	require.NoError(t, err)
	rec = doGet(e, "/me", tok.Token)
	assert.JSONEq(t, `{"id":3,"ok":true,"email":"b@example.com","role":"admin"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret), RequireRole("admin"))

	user, err := utils.NewAccessToken(testSecret, 1, "u@example.com", "user", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(e, "/me", user.Token).Code)

	admin, err := utils.NewAccessToken(testSecret, 2, "a@example.com", "admin", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(e, "/me", admin.Token).Code)
}

func newTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test",
	}
	return NewResponseCache(cfg, rdb, nil), mr
}

func TestResponseCacheHitMissAndPurge(t *testing.T) {
	rc, _ := newTestCache(t)
	calls := 0
	e := echo.New()
	e.GET("/v1/reviews", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"n": calls})
	}, rc.Middleware())

	first := doGet(e, "/v1/reviews", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doGet(e, "/v1/reviews", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	rc.Purge(context.Background(), "/v1/reviews")
	third := doGet(e, "/v1/reviews", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	rc, _ := newTestCache(t)
	calls := 0
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "x"})
	}, rc.Middleware())

	doGet(e, "/boom", "")
	doGet(e, "/boom", "")
	assert.Equal(t, 2, calls)
}

func TestResponseCacheDisabledIsPassthrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil, nil)
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, rc.Middleware())
	rec := doGet(e, "/x", "")
	assert.Equal(t, "", rec.Header().Get("X-Cache"))
	rc.Purge(context.Background(), "/x")
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
