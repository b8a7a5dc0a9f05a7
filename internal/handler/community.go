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

// CachePurger drops cached responses of route patterns after a write.
type CachePurger interface {
	Purge(ctx context.Context, routes ...string)
}

// Cached public routes that writes invalidate.
const (
	RouteGallery  = "/v1/images/gallery"
	RouteReviews  = "/v1/reviews"
	RoutePackages = "/v1/packages"
)

// CommunityHandler serves reviews, the support form and the package
// catalogue.
type CommunityHandler struct {
	Reviews *service.ReviewService
	Support *service.SupportService
	Cache   CachePurger
	Logger  *slog.Logger
}

func NewCommunityHandler(r *service.ReviewService, s *service.SupportService, cache CachePurger, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{Reviews: r, Support: s, Cache: cache, Logger: logger}
}

// Packages lists the purchasable credit packages.
func (h *CommunityHandler) Packages(c echo.Context) error {
	return c.JSON(http.StatusOK, model.DefaultCreditPackages)
}

// ListReviews returns every review with its author.
func (h *CommunityHandler) ListReviews(c echo.Context) error {
	out, err := h.Reviews.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview stores the caller's single review.
func (h *CommunityHandler) CreateReview(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Reviews.Create(ctx, uid, req.Rating, req.Comment)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if h.Cache != nil {
		h.Cache.Purge(ctx, RouteReviews)
	}
	return c.JSON(http.StatusCreated, rv)
}

type supportReq struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	IssueType string `json:"issue_type"`
}

// SubmitSupport opens a ticket.  Signed-in senders are linked to their
// account.
func (h *CommunityHandler) SubmitSupport(c echo.Context) error {
	var req supportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := service.SupportInput{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IssueType: req.IssueType,
	}
	if uid, ok := middleware.UserID(c); ok {
		in.UserID = &uid
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Support.Submit(ctx, in)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, m)
}
