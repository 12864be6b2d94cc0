package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"latthi-storefront/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Message: msg}
}

// statusFor maps service errors to HTTP status codes. ok is false for
// errors the client cannot act on.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrRefundExists),
		errors.Is(err, domain.ErrRefundDecided):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrUnknownSource),
		errors.Is(err, domain.ErrRefundNotAllowed):
		return http.StatusUnprocessableEntity, true
	}
	return http.StatusInternalServerError, false
}

// fail logs err and writes a short message. Internal causes stay in the log.
func (h *handlers) fail(c *gin.Context, op string, err error) {
	h.failWith(c, op, err, http.StatusInternalServerError)
}

// failRead is fail for order views: a store outage answers 503 so clients
// keep showing what they already have.
func (h *handlers) failRead(c *gin.Context, op string, err error) {
	h.failWith(c, op, err, http.StatusServiceUnavailable)
}

func (h *handlers) failWith(c *gin.Context, op string, err error, fallback int) {
	status, known := statusFor(err)
	if !known {
		status = fallback
		h.logger.Printf("api: %s error=%v", op, err)
		c.AbortWithStatusJSON(status, errorBody(http.StatusText(status)))
		return
	}
	if status == http.StatusConflict {
		h.logger.Printf("api: %s conflict=%v", op, err)
	}
	c.AbortWithStatusJSON(status, errorBody(message(err)))
}

func message(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownSource):
		return domain.ErrUnknownSource.Error()
	case errors.Is(err, domain.ErrVersionConflict):
		return "order changed while you were editing, refresh and try again"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	}
	return err.Error()
}
