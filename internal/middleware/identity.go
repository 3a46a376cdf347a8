package middleware

// identity.go holds the context keys written by JWTAuth and the accessors
// handlers and other middleware use to read them back.

import "github.com/labstack/echo/v4"

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Email returns the authenticated email stored by JWTAuth.
func Email(c echo.Context) string {
	s, _ := c.Get(ctxEmail).(string)
	return s
}
