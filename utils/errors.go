package utils

import (
	"errors"
	"net/http"

	"summarysnap/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

type kindResponse struct {
	status  int
	code    string
	message string
}

var kindResponses = []struct {
	kind error
	resp kindResponse
}{
	{apperr.ErrLoad, kindResponse{http.StatusUnprocessableEntity, "load_error", "The PDF could not be read"}},
	{apperr.ErrRetrieval, kindResponse{http.StatusConflict, "retrieval_error", "Upload and process a PDF first"}},
	{apperr.ErrConfig, kindResponse{http.StatusServiceUnavailable, "config_error", "The service is not configured correctly"}},
	{apperr.ErrEmbedding, kindResponse{http.StatusBadGateway, "embedding_error", "The embedding provider failed"}},
	{apperr.ErrGeneration, kindResponse{http.StatusBadGateway, "generation_error", "The language model failed"}},
	{apperr.ErrIndex, kindResponse{http.StatusInternalServerError, "index_error", "The document index failed"}},
}

// RespondWithPipelineError maps a pipeline error kind to its status code.
// invalidInput marks errors caused by the request itself.
func RespondWithPipelineError(c *gin.Context, err error, invalidInput error) {
	if invalidInput != nil && errors.Is(err, invalidInput) {
		RespondWithBadRequest(c, err.Error(), nil)
		return
	}
	for _, kr := range kindResponses {
		if errors.Is(err, kr.kind) {
			RespondWithError(c, kr.resp.status, kr.resp.code, kr.resp.message, err.Error())
			return
		}
	}
	RespondWithInternalError(c, "Unexpected error", err.Error())
}
