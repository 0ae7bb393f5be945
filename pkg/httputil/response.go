package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/apptqueue/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "", data)
}

// RespondCreated sends a 201 with the created resource
func RespondCreated(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusCreated, message, data)
}

func Respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code != errors.ErrInternal {
		statusCode = appErr.StatusCode()
		message = appErr.Message
	} else {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("unhandled error")
	}

	c.Error(err)
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
	})
}

// RespondBadRequest sends a 400 for malformed input
func RespondBadRequest(c *gin.Context, message string) {
	RespondErrorStatus(c, http.StatusBadRequest, message)
}

func RespondTooManyRequests(c *gin.Context, message string) {
	RespondErrorStatus(c, http.StatusTooManyRequests, message)
}

// RespondErrorStatus aborts with an error body and an explicit status.
func RespondErrorStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
	})
}
