package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/v1/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/items/:id", "204"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/5", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/items/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(generations.WithLabelValues("success"))
	RecordGeneration("success", 2*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(generations.WithLabelValues("success")))

	debited := testutil.ToFloat64(creditsDebited)
	RecordDebit(5)
	RecordDebit(0)
	assert.Equal(t, debited+5, testutil.ToFloat64(creditsDebited))

	approved := testutil.ToFloat64(creditRequestsResolved.WithLabelValues("Approved"))
	RecordResolution("Approved")
	assert.Equal(t, approved+1, testutil.ToFloat64(creditRequestsResolved.WithLabelValues("Approved")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordDebit(1)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "imagen_studio_credits_debited_total"))
}
