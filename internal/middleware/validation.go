package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/apptqueue/internal/model"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"apptdate":     layoutValidator(model.DateLayout),
			"appttime":     layoutValidator(model.TimeLayout),
			"stafftype":    func(fl validator.FieldLevel) bool { return model.StaffType(fl.Field().String()).Valid() },
			"availability": func(fl validator.FieldLevel) bool { return model.AvailabilityStatus(fl.Field().String()).Valid() },
			"apptstatus":   func(fl validator.FieldLevel) bool { return model.AppointmentStatus(fl.Field().String()).Valid() },
		},
		CustomErrorMessages: map[string]string{
			"required":     "Field is required",
			"email":        "Invalid email format",
			"min":          "Value is too short",
			"max":          "Value is too long",
			"oneof":        "Value is not allowed",
			"apptdate":     "Date must be YYYY-MM-DD",
			"appttime":     "Time must be HH:MM",
			"stafftype":    "Staff type must be Doctor, Consultant or Support Agent",
			"availability": "Availability must be Available or On Leave",
			"apptstatus":   "Unknown appointment status",
		},
	}
}

// layoutValidator accepts strings that parse exactly with layout.
func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		t, err := time.Parse(layout, s)
		return err == nil && t.Format(layout) == s
	}
}

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's binding engine.
func RegisterValidators(config ValidationConfig) {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range config.CustomValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

// Validation renders binding errors attached by handlers as a 400.
func Validation(config ValidationConfig) gin.HandlerFunc {
	RegisterValidators(config)

	return func(c *gin.Context) {
		c.Next()

		bindErrs := c.Errors.ByType(gin.ErrorTypeBind)
		if len(bindErrs) == 0 || c.Writer.Written() {
			return
		}

		var validationErrors []ValidationError
		for _, err := range bindErrs {
			var errs validator.ValidationErrors
			if !stderrors.As(err.Err, &errs) {
				continue
			}
			for _, e := range errs {
				msg := config.CustomErrorMessages[e.Tag()]
				if msg == "" {
					msg = e.Error()
				}
				validationErrors = append(validationErrors, ValidationError{
					Field:   e.Field(),
					Message: msg,
				})
			}
		}

		if len(validationErrors) == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid request body",
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Validation failed",
			"errors":  validationErrors,
		})
	}
}
