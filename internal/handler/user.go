package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/service"
)

// UserHandler serves the signed-in user's own resources under /v1/users.
type UserHandler struct {
	Users   *service.UserService
	Credits *service.CreditService
	Gen     *service.GenerationService
	Cache   CachePurger
	Logger  *slog.Logger
}

func NewUserHandler(u *service.UserService, cr *service.CreditService, g *service.GenerationService,
	cache CachePurger, logger *slog.Logger) *UserHandler {
	return &UserHandler{Users: u, Credits: cr, Gen: g, Cache: cache, Logger: logger}
}

// purgeReviews drops cached review listings, which embed reviewer names
// and avatars.
func (h *UserHandler) purgeReviews(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Purge(ctx, RouteReviews)
	}
}

// Me returns the profile with favorites.
func (h *UserHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Profile(ctx, uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, u)
}

type updateProfileReq struct {
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UpdateMe edits name, avatar or password.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, service.ProfileInput{Name: req.Name, Avatar: req.Avatar, Password: req.Password})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if req.Name != nil || req.Avatar != nil {
		h.purgeReviews(ctx)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteMe removes the caller's account and everything it owns.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Delete(ctx, uid); err != nil {
		return writeError(c, h.Logger, err)
	}
	h.purgeReviews(ctx)
	return c.NoContent(http.StatusNoContent)
}

type toggleFavoriteReq struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// ToggleFavorite adds or removes an image and returns the updated list.
func (h *UserHandler) ToggleFavorite(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req toggleFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Gen.ToggleFavorite(ctx, uid, req.ImageURL, req.Prompt)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	favs, err := h.Gen.ListFavorites(ctx, uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": result, "favorites": favs})
}

// Favorites lists the caller's favorites.
func (h *UserHandler) Favorites(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	favs, err := h.Gen.ListFavorites(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, favs)
}

// History lists the caller's generations.
func (h *UserHandler) History(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	items, err := h.Gen.ListHistory(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Transactions lists the caller's purchases.
func (h *UserHandler) Transactions(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	txns, err := h.Credits.ListTransactions(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, txns)
}

type creditRequestReq struct {
	TransactionID string              `json:"transaction_id"`
	AmountPaid    float64             `json:"amount_paid"`
	CreditPackage model.CreditPackage `json:"credit_package"`
	PaymentDate   string              `json:"payment_date"`
}

// SubmitCreditRequest records a payment claim for admin review.
func (h *UserHandler) SubmitCreditRequest(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req creditRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	paid, err := service.ParsePaymentDate(req.PaymentDate)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cr, err := h.Credits.Submit(ctx, uid, service.SubmitInput{
		TransactionRef: req.TransactionID,
		AmountPaid:     req.AmountPaid,
		Package:        req.CreditPackage,
		PaymentDate:    paid,
	})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, cr)
}

// CreditRequests lists the caller's payment claims.
func (h *UserHandler) CreditRequests(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Credits.ListMine(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}
