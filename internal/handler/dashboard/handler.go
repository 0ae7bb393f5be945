package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/service/dashboard"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/dashboard")
	{
		g.GET("/stats", h.Stats)
		g.GET("/staff-load", h.StaffLoad)
	}
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}

func (h *Handler) StaffLoad(c *gin.Context) {
	date, ok := handler.QueryDate(c)
	if !ok {
		return
	}

	load, err := h.service.StaffLoad(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, load)
}
