package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/limaJavier/examtabling/internal/store"
	"github.com/limaJavier/examtabling/pkg/model"
)

// Response is the envelope of every JSON answer; Code is 0 on success
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	codeInvalidRequest = 10001
	codeValidation     = 10002
	codeNotFound       = 10404
	codeInternal       = 50000
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func badRequest(c *gin.Context, message, details string) {
	c.JSON(http.StatusBadRequest, Response{Code: codeInvalidRequest, Message: message, Details: details})
}

// fail maps an error coming from the service onto a status code
func fail(c *gin.Context, err error) {
	var validationErr model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Code: codeValidation, Message: "validation failed", Details: validationErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Code: codeNotFound, Message: "not found", Details: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Response{Code: codeInternal, Message: "internal server error"})
	}
}
