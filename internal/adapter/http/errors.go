package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"studentloan-backend/internal/domain/apperr"
)

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		resp := ErrorResponse{Error: err.Error()}
		if ve.Field != "" {
			resp.Details = []FieldError{{Field: ve.Field, Message: ve.Reason}}
		}
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, apperr.ErrEligibility):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: apperr.Reason(err)})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrComputation):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// bindAndValidate returns a non-nil response error when the request is
// malformed; callers return it as is.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
