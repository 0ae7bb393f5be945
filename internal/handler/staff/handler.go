package staff

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/service/staff"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service staff.StaffServicer
}

func NewHandler(service staff.StaffServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/staff")
	{
		g.GET("", h.ListStaff)
		g.POST("", h.CreateStaff)
		g.GET("/availability", h.AvailabilityAll)
		g.GET("/:id", h.GetStaff)
		g.PUT("/:id", h.UpdateStaff)
		g.DELETE("/:id", h.DeleteStaff)
		g.GET("/:id/availability", h.Availability)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, "Staff created", created)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "staff")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) ListStaff(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "staff")
	if !ok {
		return
	}
	var req model.UpdateStaffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "staff")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.Respond(c, http.StatusOK, "Staff deleted", nil)
}

func (h *Handler) Availability(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "staff")
	if !ok {
		return
	}
	date, ok := handler.QueryDate(c)
	if !ok {
		return
	}

	view, err := h.service.Availability(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) AvailabilityAll(c *gin.Context) {
	date, ok := handler.QueryDate(c)
	if !ok {
		return
	}

	views, err := h.service.AvailabilityAll(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, views)
}
