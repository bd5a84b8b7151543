package api

import (
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/services"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := toResponse(err)
	if status == http.StatusInternalServerError {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("%s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if writeErr := c.JSON(status, body); writeErr != nil {
		log.Errorf("failed to write error response: %v", writeErr)
	}
}

func toResponse(err error) (int, errorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}
		return httpErr.Code, errorResponse{Error: message}
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, errorResponse{Error: validationErr.Error(), Field: validationErr.Field}
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "not allowed"}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}
