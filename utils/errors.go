package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/ledger"
)

// Sentinel errors returned by the repository layer, wrapped with %w
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrForbidden = errors.New("forbidden")
)

// AppError represents a custom application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common error constructors
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Message: message,
	}
}

// ToAppError maps domain and repository errors to the HTTP error they
// should produce. Unknown errors become a 500.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var violations Violations
	if errors.As(err, &violations) {
		return &AppError{Code: http.StatusBadRequest, Message: ErrInvalidRequest, Details: violations}
	}

	var malformed *ledger.MalformedGameError
	if errors.As(err, &malformed) {
		return &AppError{Code: http.StatusUnprocessableEntity, Message: malformed.Error()}
	}

	var noGame *ledger.NoEligibleGameError
	if errors.As(err, &noGame) {
		return &AppError{Code: http.StatusNotFound, Message: noGame.Error()}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &AppError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, ErrConflict):
		return &AppError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, ErrForbidden):
		return &AppError{Code: http.StatusForbidden, Message: err.Error()}
	}

	return NewInternalError("Internal server error")
}

// HandleError sends an appropriate HTTP response for an error
func HandleError(c *gin.Context, err error) {
	appErr := ToAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

// HandleSuccess sends a success response
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// HandleCreated sends a 201 response
func HandleCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}
