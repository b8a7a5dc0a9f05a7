package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/imagen-studio/internal/handler"
	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/model"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Image     *handler.ImageHandler
	Community *handler.CommunityHandler
	Admin     *handler.AdminHandler
	Health    echo.HandlerFunc
	Metrics   http.Handler
}

// RegisterRoutes mounts the whole API on e.  cache wraps the public read
// routes; pass nil to serve them uncached.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	if h.Health != nil {
		e.GET("/healthz", h.Health)
	}
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}

	registerAuth(e, h.Auth)
	registerPublic(e, h, jwtSecret, cache)
	registerUser(e, h, jwtSecret)
	registerAdmin(e, h.Admin, jwtSecret)
}

// registerAuth mounts session endpoints.  None of them need an access token;
// logout also accepts a bearer token to revoke every session.
func registerAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

func registerPublic(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	var cached []echo.MiddlewareFunc
	if cache != nil {
		cached = append(cached, cache)
	}
	e.GET(handler.RoutePackages, h.Community.Packages, cached...)
	e.GET(handler.RouteGallery, h.Image.GalleryList, cached...)
	e.GET(handler.RouteReviews, h.Community.ListReviews, cached...)

	// Guests may write to support; a valid token links the ticket.
	e.POST("/v1/support", h.Community.SubmitSupport, middleware.OptionalJWT(jwtSecret))
}

func registerUser(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/users/me", h.User.Me)
	g.PATCH("/users/me", h.User.UpdateMe)
	g.DELETE("/users/me", h.User.DeleteMe)
	g.GET("/users/me/favorites", h.User.Favorites)
	g.GET("/users/me/history", h.User.History)
	g.GET("/users/me/transactions", h.User.Transactions)
	g.GET("/users/me/credit-requests", h.User.CreditRequests)
	g.POST("/users/favorites/toggle", h.User.ToggleFavorite)
	g.POST("/users/credit-requests", h.User.SubmitCreditRequest)

	g.POST("/images/generate", h.Image.Generate)
	g.POST("/reviews", h.Community.CreateReview)
}

// registerAdmin mounts the admin console.  Every route requires an admin
// token.
func registerAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Users ----
	g.GET("/users", a.ListUsers)
	g.POST("/users/:id/add-credits", a.AddCredits)
	g.DELETE("/users/:id", a.DeleteUser)

	// ---- Credits ----
	g.GET("/transactions", a.Transactions)
	g.GET("/credit-requests", a.CreditRequests)
	g.POST("/credit-requests/:id/approve", a.ApproveCreditRequest)
	g.POST("/credit-requests/:id/reject", a.RejectCreditRequest)

	// ---- Content ----
	g.GET("/history", a.History)
	g.POST("/gallery", a.AddGalleryImage)

	// ---- Support and audit ----
	g.GET("/support", a.SupportMessages)
	g.POST("/support/:id/resolve", a.ResolveSupport)
	g.GET("/activity", a.ActivityLog)
}
