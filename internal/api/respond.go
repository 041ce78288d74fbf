package api

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const unexpectedError = "An unexpected error occurred"

func init() {
	// gin's validator reports JSON field names, matching the service validator.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError renders err as {message, error, details}.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err.Error(), err)
	}

	message := ae.Message
	if ae.Kind == apperr.KindInternal {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		if h.production {
			message = unexpectedError
		}
	}

	body := gin.H{
		"message": message,
		"error":   ae.Kind.Title(),
	}
	if len(ae.Details) > 0 {
		body["details"] = ae.Details
	}
	c.JSON(ae.Kind.Status(), body)
}

// bindJSON decodes and validates the request body into req, rendering the failure.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, service.FieldErrorsFrom(err))
		return false
	}
	return true
}

// pathID parses the :id path parameter.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.respondError(c, apperr.Validation(apperr.FieldError{Field: "id", Message: "must be a positive integer"}))
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, details *apperr.FieldErrors) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		details.Add(name, "must be a non-negative integer")
		return 0
	}
	return n
}

// queryFloat reads an optional float query parameter.
func queryFloat(c *gin.Context, name string, details *apperr.FieldErrors) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		details.Add(name, "must be a number")
		return nil
	}
	return &f
}
