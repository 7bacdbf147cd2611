package scheduling

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
	api.POST("/appointments", h.Book)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments/:id/cancel", h.Cancel)
	api.POST("/appointments/:id/complete", h.Complete, auth.RequireRole(auth.RoleDoctor))
	api.GET("/patients/:id/appointments", h.ListForPatient)
	api.GET("/doctors/:id/appointments", h.ListForDoctor)
}

func (h *Handler) Book(c echo.Context) error {
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Patients book for themselves; the profile in the token wins over the body.
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.Role == auth.RolePatient {
		in.PatientID = claims.ProfileID
	}

	a, err := h.svc.Book(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrPastSchedule) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	a, err = h.svc.Cancel(c.Request().Context(), a.ID)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cancel failed")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Complete(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	a, err = h.svc.Complete(c.Request().Context(), a.ID)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "complete failed")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.Role == auth.RolePatient && claims.ProfileID != id {
		return echo.NewHTTPError(http.StatusForbidden, "patients may only view their own appointments")
	}

	params := pagination.FromContext(c)
	items, total, err := h.svc.ListForPatient(c.Request().Context(), id, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.Role == auth.RoleDoctor && claims.ProfileID != id {
		return echo.NewHTTPError(http.StatusForbidden, "doctors may only view their own appointments")
	}
	if claims != nil && claims.Role == auth.RolePatient {
		return echo.NewHTTPError(http.StatusForbidden, "doctor schedule is not visible to patients")
	}

	params := pagination.FromContext(c)
	items, total, err := h.svc.ListForDoctor(c.Request().Context(), id, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

// loadOwned fetches the appointment in :id and verifies the caller is its
// patient, its doctor, or an admin.
func (h *Handler) loadOwned(c echo.Context) (*Appointment, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}

	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil || claims.Role == auth.RoleAdmin {
		return a, nil
	}
	switch claims.Role {
	case auth.RolePatient:
		if claims.ProfileID != a.PatientID {
			return nil, echo.NewHTTPError(http.StatusForbidden, "not your appointment")
		}
	case auth.RoleDoctor:
		if claims.ProfileID != a.DoctorID {
			return nil, echo.NewHTTPError(http.StatusForbidden, "not your appointment")
		}
	}
	return a, nil
}
