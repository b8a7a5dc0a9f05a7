package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/queue"
	"github.com/iliyamo/imagen-studio/internal/service"
)

// ActivityTrail stores and lists admin audit events.  Recording never fails
// the request.
type ActivityTrail interface {
	Record(ctx context.Context, ev queue.ActivityEvent)
	List(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

// AdminHandler serves the /v1/admin routes.  Every state change is recorded
// in the activity log.
type AdminHandler struct {
	Users    *service.UserService
	Credits  *service.CreditService
	Gen      *service.GenerationService
	Gallery  *service.GalleryService
	Support  *service.SupportService
	Activity ActivityTrail
	Cache    CachePurger
	Logger   *slog.Logger
}

func NewAdminHandler(users *service.UserService, credits *service.CreditService, gen *service.GenerationService,
	gallery *service.GalleryService, support *service.SupportService, activity ActivityTrail,
	cache CachePurger, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		Users: users, Credits: credits, Gen: gen, Gallery: gallery, Support: support,
		Activity: activity, Cache: cache, Logger: logger,
	}
}

func (h *AdminHandler) record(c echo.Context, action string, target *uint64, targetName, details string) {
	adminID, _ := middleware.UserID(c)
	h.Activity.Record(c.Request().Context(), queue.ActivityEvent{
		AdminID:      adminID,
		AdminEmail:   middleware.Email(c),
		Action:       action,
		TargetUserID: target,
		TargetName:   targetName,
		Details:      details,
		OccurredAt:   time.Now().UTC(),
	})
}

// ListUsers returns every account.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

type addCreditsReq struct {
	Amount int64 `json:"amount"`
}

// AddCredits grants (or, with a negative amount, removes) credits.
func (h *AdminHandler) AddCredits(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req addCreditsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.AddCredits(ctx, id, req.Amount)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	action, details := model.ActionAddCredits, fmt.Sprintf("Added %d credits", req.Amount)
	if req.Amount < 0 {
		action, details = model.ActionRemoveCredits, fmt.Sprintf("Removed %d credits", -req.Amount)
	}
	h.record(c, action, &u.ID, u.Name, details)
	return c.JSON(http.StatusOK, u)
}

// DeleteUser removes an account and everything it owns.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Delete(ctx, id)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if h.Cache != nil {
		h.Cache.Purge(ctx, RouteReviews)
	}
	h.record(c, model.ActionDeleteUser, &u.ID, u.Name, "Deleted user "+u.Email)
	return c.NoContent(http.StatusNoContent)
}

// History lists every generation.
func (h *AdminHandler) History(c echo.Context) error {
	items, err := h.Gen.ListHistory(c.Request().Context(), 0)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Transactions lists every purchase.
func (h *AdminHandler) Transactions(c echo.Context) error {
	txns, err := h.Credits.ListTransactions(c.Request().Context(), 0)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, txns)
}

// CreditRequests lists every payment claim.
func (h *AdminHandler) CreditRequests(c echo.Context) error {
	out, err := h.Credits.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ApproveCreditRequest grants the package and logs the purchase.
func (h *AdminHandler) ApproveCreditRequest(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cr, err := h.Credits.Approve(ctx, id)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	h.record(c, model.ActionApproveRequest, &cr.UserID, cr.Name,
		fmt.Sprintf("Approved request %d for %d credits", cr.ID, cr.Package.Credits))
	return c.JSON(http.StatusOK, cr)
}

type rejectReq struct {
	Note *string `json:"note"`
}

// RejectCreditRequest closes a claim with an optional note.  An empty body
// rejects without a note; a malformed one rejects nothing.
func (h *AdminHandler) RejectCreditRequest(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cr, err := h.Credits.Reject(ctx, id, req.Note)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	h.record(c, model.ActionRejectRequest, &cr.UserID, cr.Name, fmt.Sprintf("Rejected request %d", cr.ID))
	return c.JSON(http.StatusOK, cr)
}

type galleryReq struct {
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
	Style    string `json:"style"`
}

// AddGalleryImage publishes an image to the public gallery.
func (h *AdminHandler) AddGalleryImage(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req galleryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Gallery.Add(ctx, adminID, req.ImageURL, req.Title, req.Style)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if h.Cache != nil {
		h.Cache.Purge(ctx, RouteGallery)
	}
	h.record(c, model.ActionAddGalleryImage, nil, "", "Added gallery image "+g.Title)
	return c.JSON(http.StatusCreated, g)
}

// ActivityLog lists recent admin actions.  ?limit= caps the page size.
func (h *AdminHandler) ActivityLog(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	out, err := h.Activity.List(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SupportMessages lists every ticket.
func (h *AdminHandler) SupportMessages(c echo.Context) error {
	out, err := h.Support.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ResolveSupport closes a ticket.
func (h *AdminHandler) ResolveSupport(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Support.Resolve(ctx, id); err != nil {
		return writeError(c, h.Logger, err)
	}
	h.record(c, model.ActionResolveSupport, nil, "", fmt.Sprintf("Resolved ticket %d", id))
	return c.NoContent(http.StatusNoContent)
}
