package insight

import (
	"net/http"

	"github.com/google/uuid"
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
	api.GET("/patients/:id/health-report", h.HealthReport)
	api.GET("/patients/:id/risk-score", h.RiskScore)
	api.GET("/patients/:id/medicine-usage", h.MedicineUsage)
}

func (h *Handler) HealthReport(c echo.Context) error {
	patientID, err := patientScope(c)
	if err != nil {
		return err
	}
	report, err := h.svc.HealthReport(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "report unavailable")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) RiskScore(c echo.Context) error {
	patientID, err := patientScope(c)
	if err != nil {
		return err
	}
	score, err := h.svc.CurrentRiskScore(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "score unavailable")
	}
	return c.JSON(http.StatusOK, score)
}

func (h *Handler) MedicineUsage(c echo.Context) error {
	patientID, err := patientScope(c)
	if err != nil {
		return err
	}
	usage, err := h.svc.MedicineUsage(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "usage unavailable")
	}
	return c.JSON(http.StatusOK, usage)
}

// patientScope parses :id and restricts patients to their own reports.
// Doctors and admins may read any patient.
func patientScope(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.Role == auth.RolePatient && claims.ProfileID != id {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "patients may only view their own reports")
	}
	return id, nil
}
