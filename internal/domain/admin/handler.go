package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caredesk/caredesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/dashboard", h.Dashboard, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "dashboard unavailable")
	}
	return c.JSON(http.StatusOK, d)
}
