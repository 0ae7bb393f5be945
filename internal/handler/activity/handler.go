package activity

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/service/activity"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service *activity.Service
}

func NewHandler(service *activity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/activity", h.Recent)
}

// Recent lists the newest entries; ?limit= defaults to 10 and is capped at 50.
func (h *Handler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.RespondBadRequest(c, "Limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}
