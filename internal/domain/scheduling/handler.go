package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hospitalms/scheduler/internal/platform/auth"
	"github.com/hospitalms/scheduler/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/appointments", h.ListAppointments)
	readGroup.GET("/appointments/:id", h.GetAppointment)
	readGroup.GET("/doctors/:doctorId/queue", h.GetQueue)

	// Registration and booking – front desk included
	deskGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	deskGroup.POST("/appointments", h.CreateAppointment)
	deskGroup.POST("/appointments/:id/confirm", h.ConfirmAppointment)
	deskGroup.POST("/appointments/:id/cancel", h.CancelAppointment)
	deskGroup.POST("/appointments/:id/no-show", h.MarkNoShow)

	// Queue advancement – clinical staff only
	clinGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	clinGroup.POST("/doctors/:doctorId/queue/call-next", h.CallNext)
	clinGroup.POST("/appointments/:id/complete", h.CompleteAppointment)
}

// httpError maps domain errors onto HTTP statuses. Business-rule rejections
// carry the message through so the UI can render a specific reason.
func httpError(err error) error {
	var ve *ValidationError
	var te *InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.As(err, &te):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, te.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDoctorBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Actor = auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	var params SearchParams

	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		params.DoctorID = &id
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		params.PatientID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		st := Status(v)
		if !st.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		params.Status = &st
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		params.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		// end_date is inclusive in the API, the repo window is half-open
		end := t.Add(24 * time.Hour)
		params.EndDate = &end
	}

	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetQueue(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	queue, err := h.svc.Queue(c.Request().Context(), doctorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"waiting":   len(queue),
		"queue":     queue,
	})
}

func (h *Handler) CallNext(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.CallNext(c.Request().Context(), doctorID, actor)
	if err != nil {
		return httpError(err)
	}
	if a == nil {
		// Nobody waiting is a normal empty result, never an error.
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ConfirmAppointment(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, actor string, ec echo.Context) (*Appointment, error) {
		return h.svc.Confirm(ec.Request().Context(), id, actor)
	})
}

type cancelRequest struct {
	CancelReason string `json:"cancel_reason"`
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.transition(c, func(id uuid.UUID, actor string, ec echo.Context) (*Appointment, error) {
		return h.svc.Cancel(ec.Request().Context(), id, req.CancelReason, actor)
	})
}

func (h *Handler) CompleteAppointment(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, actor string, ec echo.Context) (*Appointment, error) {
		return h.svc.Complete(ec.Request().Context(), id, actor)
	})
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, actor string, ec echo.Context) (*Appointment, error) {
		return h.svc.MarkNoShow(ec.Request().Context(), id, actor)
	})
}

func (h *Handler) transition(c echo.Context, fn func(uuid.UUID, string, echo.Context) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	a, err := fn(id, actor, c)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}
