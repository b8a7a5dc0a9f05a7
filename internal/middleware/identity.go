package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's ID, or false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Email returns the email claim of the authenticated user.
func Email(c echo.Context) string {
	e, _ := c.Get(ctxEmail).(string)
	return e
}

// Role returns the role claim of the authenticated user.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}
