package queue

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/service/queue"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	manager *queue.Manager
}

func NewHandler(manager *queue.Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/queue")
	{
		g.GET("", h.ListQueue)
		g.POST("/auto-assign", h.AutoAssign)
		g.POST("/drain", h.Drain)
		g.POST("/:queueId/assign/:staffId", h.ManualAssign)
	}
}

func (h *Handler) ListQueue(c *gin.Context) {
	items, err := h.manager.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

// AutoAssign answers 200 whether or not anything was assigned; the body
// says which.
func (h *Handler) AutoAssign(c *gin.Context) {
	result, err := h.manager.AutoAssign(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.Respond(c, http.StatusOK, result.Message, result)
}

// Drain repeats auto-assign until the head cannot be placed. ?max= bounds
// the number of assignments; 0 or absent means no bound.
func (h *Handler) Drain(c *gin.Context) {
	limit := 0
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.RespondBadRequest(c, "Max must be a non-negative integer")
			return
		}
		limit = n
	}

	result, err := h.manager.Drain(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.Respond(c, http.StatusOK, fmt.Sprintf("Assigned %d appointments from queue", len(result.Assigned)), result)
}

func (h *Handler) ManualAssign(c *gin.Context) {
	queueID, ok := handler.ParseID(c, "queueId", "queue item")
	if !ok {
		return
	}
	staffID, ok := handler.ParseID(c, "staffId", "staff")
	if !ok {
		return
	}

	result, err := h.manager.ManualAssign(c.Request.Context(), queueID, staffID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.Respond(c, http.StatusOK, result.Message, result)
}
