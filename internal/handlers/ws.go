package handlers

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/live"
	"github.com/ytakahashi/shared-todo/internal/stream"
)

type session interface {
	Run(ctx context.Context) error
}

// serveSession runs a live session against an upgraded connection until
// either side ends it.
func (h *Handler) serveSession(c echo.Context, conn *stream.Conn, s session, onCommand func(stream.Command)) {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		if err := s.Run(ctx); err != nil {
			h.logger.Debug("session_ended", "path", c.Path(), "error", err)
		}
	}()

	if err := conn.Serve(ctx, onCommand); err != nil {
		h.logger.Debug("connection_closed", "path", c.Path(), "error", err)
	}
	cancel()
	<-done
}

func (h *Handler) DashboardSocket(c echo.Context) error {
	user := currentUser(c)
	conn, err := stream.Accept(c.Response(), c.Request(), h.opts.AllowedOrigins, h.logger)
	if err != nil {
		h.logger.Warn("websocket_rejected", "path", c.Path(), "error", err)
		return nil
	}

	dash := live.NewDashboard(h.store, user, conn, h.logger)
	h.serveSession(c, conn, dash, func(cmd stream.Command) {
		if cmd.Type == stream.CommandSelect && !dash.Select(cmd.ListID) {
			h.logger.Debug("select_ignored", "list", cmd.ListID, "user", user.ID)
		}
	})
	return nil
}

func (h *Handler) ListSocket(c echo.Context) error {
	user := currentUser(c)
	conn, err := stream.Accept(c.Response(), c.Request(), h.opts.AllowedOrigins, h.logger)
	if err != nil {
		h.logger.Warn("websocket_rejected", "path", c.Path(), "error", err)
		return nil
	}

	detail := live.NewDetail(h.store, c.Param("id"), user, conn, h.logger)
	h.serveSession(c, conn, detail, nil)
	return nil
}
