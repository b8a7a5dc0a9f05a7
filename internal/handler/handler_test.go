package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/queue"
	"github.com/iliyamo/imagen-studio/internal/repository"
	"github.com/iliyamo/imagen-studio/internal/service"
	"github.com/iliyamo/imagen-studio/internal/utils"
)

const testSecret = "handler-secret"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeTrail struct {
	events []queue.ActivityEvent
}

func (f *fakeTrail) Record(_ context.Context, ev queue.ActivityEvent) { f.events = append(f.events, ev) }

func (f *fakeTrail) List(context.Context, int) ([]model.ActivityLog, error) { return nil, nil }

type fakePurger struct {
	routes []string
}

func (f *fakePurger) Purge(_ context.Context, routes ...string) { f.routes = append(f.routes, routes...) }

var (
	userCols    = []string{"id", "name", "email", "password_hash", "credits", "role", "avatar", "created_at", "updated_at"}
	requestCols = []string{
		"id", "user_id", "name", "email", "transaction_ref", "amount_paid", "package_credits",
		"package_price", "package_description", "payment_date", "status", "admin_note", "created_at", "resolved_at",
	}
	fixedTime = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
)

func userRow(id uint64, name string) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(id, name, name+"@example.com", "hash", int64(25), model.RoleUser, nil, fixedTime, fixedTime)
}

func send(e *echo.Echo, method, path, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearerFor(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, id, fmt.Sprintf("u%d@example.com", id), role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: prompt is required", service.ErrValidation), http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrAlreadyResolved, http.StatusConflict},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrReviewExists, http.StatusConflict},
		{fmt.Errorf("debit: %w", service.ErrInsufficientCredits), http.StatusPaymentRequired},
		{service.ErrProviderFailure, http.StatusBadGateway},
		{service.ErrPersistence, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestValidationMessageStripsSentinel(t *testing.T) {
	_, msg := statusFor(fmt.Errorf("%w: prompt is required", service.ErrValidation))
	assert.Equal(t, "prompt is required", msg)
}

func TestProtectedHandlersRequireIdentity(t *testing.T) {
	e := echo.New()
	h := NewUserHandler(nil, nil, nil, nil, quietLogger)
	img := NewImageHandler(nil, nil, quietLogger)

	for _, fn := range []echo.HandlerFunc{h.Me, h.Favorites, h.History, h.ToggleFavorite, img.Generate} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, fn(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}
}

func TestPackages(t *testing.T) {
	e := echo.New()
	h := NewCommunityHandler(nil, nil, nil, quietLogger)
	req := httptest.NewRequest(http.MethodGet, RoutePackages, nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Packages(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credits":150`)
}

func TestAdminAddCreditsRejectsBadID(t *testing.T) {
	e := echo.New()
	h := NewAdminHandler(nil, nil, nil, nil, nil, &fakeTrail{}, nil, quietLogger)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":10}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.AddCredits(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAdminResolveSupportRecordsActivity(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE support_messages SET status = \? WHERE id = \?`).
		WithArgs(model.SupportResolved, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	trail := &fakeTrail{}
	support := service.NewSupportService(repository.NewSupportRepo(db))
	h := NewAdminHandler(nil, nil, nil, nil, support, trail, nil, quietLogger)

	e := echo.New()
	e.POST("/support/:id/resolve", h.ResolveSupport, middleware.JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodPost, "/support/9/resolve", nil)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, 4, model.RoleAdmin))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, trail.events, 1)
	assert.Equal(t, model.ActionResolveSupport, trail.events[0].Action)
	assert.Equal(t, uint64(4), trail.events[0].AdminID)
	assert.Equal(t, "u4@example.com", trail.events[0].AdminEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminResolveSupportMissingTicket(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	trail := &fakeTrail{}
	support := service.NewSupportService(repository.NewSupportRepo(db))
	h := NewAdminHandler(nil, nil, nil, nil, support, trail, nil, quietLogger)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.ResolveSupport(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, trail.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	e := echo.New()
	e.GET("/healthz", Health(db))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func newRejectEcho(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, *fakeTrail) {
	t.Helper()
	db, mock := newMockDB(t)
	credits := service.NewCreditService(db, repository.NewUserRepo(db), repository.NewCreditRequestRepo(db),
		repository.NewTransactionRepo(db), quietLogger)
	trail := &fakeTrail{}
	h := NewAdminHandler(nil, credits, nil, nil, nil, trail, nil, quietLogger)

	e := echo.New()
	e.POST("/credit-requests/:id/reject", h.RejectCreditRequest, middleware.JWTAuth(testSecret))
	return e, mock, trail
}

func TestRejectMalformedBodyLeavesRequestPending(t *testing.T) {
	e, mock, trail := newRejectEcho(t)

	rec := send(e, http.MethodPost, "/credit-requests/7/reject", `{"note": 42}`, bearerFor(t, 1, model.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid body"}`, rec.Body.String())
	assert.Empty(t, trail.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectWithoutBodyHasNoNote(t *testing.T) {
	e, mock, trail := newRejectEcho(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM credit_requests WHERE id = \? FOR UPDATE`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow(int64(7), int64(3), "Ann", "ann@example.com", "TX-1",
			9.0, int64(150), 9.0, "Most popular", fixedTime, model.RequestPending, nil, fixedTime, nil))
	mock.ExpectExec(`UPDATE credit_requests SET status = \?, admin_note = \?, resolved_at = \?`).
		WithArgs(model.RequestRejected, nil, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := send(e, http.MethodPost, "/credit-requests/7/reject", "", bearerFor(t, 1, model.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"Rejected"`)
	require.Len(t, trail.events, 1)
	assert.Equal(t, model.ActionRejectRequest, trail.events[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitCreditRequestAcceptsDateOnlyAndTimestamp(t *testing.T) {
	cases := map[string]string{
		"date picker": "2025-02-01",
		"timestamp":   "2025-02-01T00:00:00Z",
	}
	for name, date := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			credits := service.NewCreditService(db, repository.NewUserRepo(db), repository.NewCreditRequestRepo(db),
				repository.NewTransactionRepo(db), quietLogger)
			h := NewUserHandler(nil, credits, nil, nil, quietLogger)
			e := echo.New()
			e.POST("/users/credit-requests", h.SubmitCreditRequest, middleware.JWTAuth(testSecret))

			mock.ExpectQuery(`FROM users WHERE id = \?`).WithArgs(3).WillReturnRows(userRow(3, "Ann"))
			mock.ExpectExec("INSERT INTO credit_requests").
				WithArgs(uint64(3), "Ann", "Ann@example.com", "TX-1", 9.0, int64(150), 9.0, "Most popular",
					fixedTime, model.RequestPending, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(11, 1))

			body := `{"transaction_id":"TX-1","amount_paid":9,` +
				`"credit_package":{"credits":150,"price":9,"description":"Most popular"},` +
				`"payment_date":"` + date + `"}`
			rec := send(e, http.MethodPost, "/users/credit-requests", body, bearerFor(t, 3, model.RoleUser))

			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"status":"Pending"`)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmitCreditRequestRejectsUnparsableDate(t *testing.T) {
	h := NewUserHandler(nil, nil, nil, nil, quietLogger)
	e := echo.New()
	e.POST("/users/credit-requests", h.SubmitCreditRequest, middleware.JWTAuth(testSecret))

	body := `{"transaction_id":"TX-1","amount_paid":9,"credit_package":{"credits":150,"price":9},"payment_date":"01/02/2025"}`
	rec := send(e, http.MethodPost, "/users/credit-requests", body, bearerFor(t, 3, model.RoleUser))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileChangesPurgeCachedReviews(t *testing.T) {
	db, mock := newMockDB(t)
	users := service.NewUserService(repository.NewUserRepo(db), repository.NewFavoriteRepo(db), service.UserOptions{})
	purger := &fakePurger{}
	h := NewUserHandler(users, nil, nil, purger, quietLogger)
	e := echo.New()
	g := e.Group("", middleware.JWTAuth(testSecret))
	g.PATCH("/users/me", h.UpdateMe)
	g.DELETE("/users/me", h.DeleteMe)
	auth := bearerFor(t, 5, model.RoleUser)

	mock.ExpectQuery(`FROM users WHERE id = \?`).WithArgs(5).WillReturnRows(userRow(5, "Ann"))
	mock.ExpectExec(`UPDATE users SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM users WHERE id = \?`).WithArgs(5).WillReturnRows(userRow(5, "Annie"))
	mock.ExpectQuery(`FROM favorites WHERE user_id = \?`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "image_url", "prompt", "created_at"}))

	rec := send(e, http.MethodPatch, "/users/me", `{"name":"Annie"}`, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{RouteReviews}, purger.routes)

	mock.ExpectQuery(`FROM users WHERE id = \?`).WithArgs(5).WillReturnRows(userRow(5, "Annie"))
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))

	rec = send(e, http.MethodDelete, "/users/me", "", auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{RouteReviews, RouteReviews}, purger.routes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
