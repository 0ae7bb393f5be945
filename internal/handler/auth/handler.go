package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/apptqueue/internal/handler"
	"github.com/jwalitptl/apptqueue/internal/middleware"
	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/service/auth"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts signup and login on public and me on protected.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/signup", h.Signup)
	public.POST("/auth/login", h.Login)
	protected.GET("/auth/me", h.Me)
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, "User registered", resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("Not authenticated"))
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}
