package clinical

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caredesk/caredesk/internal/platform/auth"
	"github.com/caredesk/caredesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctorOnly := auth.RequireRole(auth.RoleDoctor)

	api.POST("/patients/:id/diseases", h.AddDiseaseEntry, doctorOnly)
	api.GET("/patients/:id/diseases", h.ListDiseaseHistory)
	api.POST("/prescriptions", h.Prescribe, doctorOnly)
	api.GET("/patients/:id/prescriptions", h.ListPrescriptions)
	api.GET("/appointments/:id/prescriptions", h.ListAppointmentPrescriptions)
	api.GET("/medicines/:name/side-effects", h.MedicineSideEffects)
}

func (h *Handler) AddDiseaseEntry(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var in DiseaseEntryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.PatientID = patientID

	e, err := h.svc.AddDiseaseEntry(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListDiseaseHistory(c echo.Context) error {
	patientID, err := h.patientScope(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	items, total, err := h.svc.DiseaseHistory(c.Request().Context(), patientID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) Prescribe(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var in PrescribeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Prescribe(c.Request().Context(), claims.ProfileID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotAppointmentDoctor):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrAppointmentCancelled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	patientID, err := h.patientScope(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	items, total, err := h.svc.Prescriptions(c.Request().Context(), patientID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) ListAppointmentPrescriptions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	items, err := h.svc.AppointmentPrescriptions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MedicineSideEffects(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "medicine name is required")
	}
	items, err := h.svc.MedicineSideEffects(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// patientScope parses the :id param and restricts patients to their own
// records.
func (h *Handler) patientScope(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.Role == auth.RolePatient && claims.ProfileID != id {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "patients may only view their own records")
	}
	return id, nil
}
