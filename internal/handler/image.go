package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/service"
)

// ImageHandler serves generation and the public gallery.
type ImageHandler struct {
	Gen     *service.GenerationService
	Gallery *service.GalleryService
	Logger  *slog.Logger
}

func NewImageHandler(g *service.GenerationService, gal *service.GalleryService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{Gen: g, Gallery: gal, Logger: logger}
}

type generateReq struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Style       string `json:"style"`
	Quality     string `json:"quality"`
}

// Generate spends credits on one image.  The provider call is bounded by
// the service's own timeout.
func (h *ImageHandler) Generate(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	out, err := h.Gen.Generate(c.Request().Context(), uid, service.GenerateInput{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Style:       req.Style,
		Quality:     req.Quality,
	})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GalleryList lists the public gallery.
func (h *ImageHandler) GalleryList(c echo.Context) error {
	images, err := h.Gallery.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, images)
}
