package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/models"
)

const (
	CookieName = "session_token"
	userKey    = "user"
)

func tokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Identify attaches the user to the context when a valid token is present and
// lets anonymous requests through.
func (a *Authenticator) Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := tokenFrom(c); token != "" {
				if user, err := a.Verify(token); err == nil {
					c.Set(userKey, user)
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous API requests with 401.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := UserFrom(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		}
		return next(c)
	}
}

// RequirePage sends anonymous page requests to the home page.
func RequirePage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := UserFrom(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}

func UserFrom(c echo.Context) (models.User, bool) {
	user, ok := c.Get(userKey).(models.User)
	return user, ok
}

// SetSessionCookie stores token in an HttpOnly cookie.
func (a *Authenticator) SetSessionCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
