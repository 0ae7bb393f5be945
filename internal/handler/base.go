// Package handler holds helpers shared by the per-area HTTP handlers.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/pkg/httputil"
)

// BindJSON binds the body into obj. On failure it records a bind error for
// the validation middleware to render and aborts the chain.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.Abort()
		return false
	}
	return true
}

// ParseID reads a UUID path parameter and answers 400 when it is malformed.
func ParseID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.RespondBadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// QueryDate reads ?date=, defaulting to today, and answers 400 when it is
// not YYYY-MM-DD.
func QueryDate(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return time.Now().Format(model.DateLayout), true
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		httputil.RespondBadRequest(c, "Date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}
