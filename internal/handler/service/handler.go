package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/service/catalog"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/services")
	{
		g.GET("", h.ListServices)
		g.POST("", h.CreateService)
		g.GET("/:id", h.GetService)
		g.PUT("/:id", h.UpdateService)
		g.DELETE("/:id", h.DeleteService)
	}
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, "Service created", created)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	svc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, svc)
}

func (h *Handler) ListServices(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}
	var req model.UpdateServiceRequest
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

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.Respond(c, http.StatusOK, "Service deleted", nil)
}
