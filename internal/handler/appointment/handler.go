package appointment

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/service/appointment"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/appointments")
	{
		g.GET("", h.ListAppointments)
		g.POST("", h.CreateAppointment)
		g.GET("/:id", h.GetAppointment)
		g.PUT("/:id", h.UpdateAppointment)
		g.PATCH("/:id/cancel", h.transition(h.service.Cancel))
		g.PATCH("/:id/complete", h.transition(h.service.Complete))
		g.PATCH("/:id/no-show", h.transition(h.service.NoShow))
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, result.Message, result)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if date := c.Query("date"); date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			httputil.RespondBadRequest(c, "Date must be YYYY-MM-DD")
			return
		}
		filters.Date = date
	}
	if id := c.Query("staffId"); id != "" {
		staffID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondBadRequest(c, "Invalid staff ID")
			return
		}
		filters.StaffID = &staffID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
		if !filters.Status.Valid() {
			httputil.RespondBadRequest(c, "Unknown appointment status")
			return
		}
	}

	list, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

// transition serves the cancel, complete and no-show endpoints.
func (h *Handler) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := handler.ParseID(c, "id", "appointment")
		if !ok {
			return
		}

		appt, err := fn(c.Request.Context(), id)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, appt)
	}
}
