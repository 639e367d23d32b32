package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
)

// Response representa la estructura estándar de respuesta de la API
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse representa una respuesta de error
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// SuccessResponse envía una respuesta exitosa
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseWithMessage envía una respuesta de error con mensaje personalizado
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    status,
	})
}

// BadRequestError envía un error 400
func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

// NotFoundError envía un error 404
func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusNotFound, message)
}

// InternalServerError envía un error 500
func InternalServerError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusInternalServerError, message)
}

// UnauthorizedError envía un error 401
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusUnauthorized, message)
}

// ConflictError envía un error 409
func ConflictError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusConflict, message)
}

// ServiceUnavailableError envía un error 503
func ServiceUnavailableError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusServiceUnavailable, message)
}

// DomainError mapea errores de dominio a códigos HTTP
func DomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contest.ErrAlreadyVoted):
		ConflictError(c, "you have already voted")
	case errors.Is(err, contest.ErrVotingClosed):
		ErrorResponseWithMessage(c, http.StatusForbidden, "voting is closed")
	case errors.Is(err, contest.ErrRegistrationClosed):
		ErrorResponseWithMessage(c, http.StatusForbidden, "registration is closed")
	case errors.Is(err, contest.ErrUnknownParticipant):
		NotFoundError(c, "participant not found")
	case errors.Is(err, contest.ErrNoBallots):
		ConflictError(c, "no ballots have been cast")
	case errors.Is(err, contest.ErrPreconditionFailed):
		ConflictError(c, err.Error())
	case errors.Is(err, contest.ErrStoreUnavailable):
		ServiceUnavailableError(c, "storage is temporarily unavailable")
	default:
		InternalServerError(c, "internal server error")
	}
}
