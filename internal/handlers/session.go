package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/auth"
	"github.com/ytakahashi/shared-todo/internal/web"
)

type sessionRequest struct {
	Token string `json:"token"`
}

// CreateSession exchanges an identity token for a session cookie.
func (h *Handler) CreateSession(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return h.fail(c, msgSignIn, errBadRequest)
	}

	user, err := h.auth.Verify(req.Token)
	if err != nil {
		h.logger.Info("sign_in_rejected", "error", err)
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgSignIn})
	}

	h.auth.SetSessionCookie(c, req.Token, h.opts.SecureCookies)
	h.logger.Info("signed_in", "user", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) SignOut(c echo.Context) error {
	auth.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handler) Home(c echo.Context) error {
	if _, ok := auth.UserFrom(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, "home.html", web.Page{Title: "Sign in"})
}

func (h *Handler) DashboardPage(c echo.Context) error {
	user := currentUser(c)
	return c.Render(http.StatusOK, "dashboard.html", web.Page{Title: "My lists", User: &user})
}

func (h *Handler) ListPage(c echo.Context) error {
	user := currentUser(c)
	return c.Render(http.StatusOK, "list.html", web.Page{Title: "List", User: &user, ListID: c.Param("id")})
}
