package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/CameronXie/pos-order-relay/internal/repository"
	"github.com/CameronXie/pos-order-relay/internal/upstream"
)

// Error codes carried in the "error" field of every error body.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeValidationFailed     = "validation_failed"
	CodeAuthenticationFailed = "authentication_failed"
	CodeNotFound             = "not_found"
	CodeUpstreamUnavailable  = "upstream_unavailable"
	CodeUpstreamError        = "upstream_error"
	CodeInternalError        = "internal_error"

	internalErrorMessage = "An internal error occurred while processing your request"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of a successful command.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSONResponse writes a JSON response with the given status code and data
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes an error response with the given status code and message
func WriteErrorResponse(w http.ResponseWriter, statusCode int, err, message string) {
	response := ErrorResponse{
		Error:   err,
		Message: message,
	}
	WriteJSONResponse(w, statusCode, response)
}

// writeInternalError hides the cause of a server-side failure from the client.
func writeInternalError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, CodeInternalError, internalErrorMessage)
}

// writeUpstreamFailure maps upstream client errors onto the relay error contract.
// It reports false when err is not an upstream error.
func writeUpstreamFailure(w http.ResponseWriter, err error) bool {
	var netErr *upstream.NetworkError
	if errors.As(err, &netErr) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, CodeUpstreamUnavailable, "Upstream service unavailable")
		return true
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		WriteErrorResponse(w, statusErr.StatusCode, CodeUpstreamError, string(statusErr.Body))
		return true
	}

	return false
}

func isNotFound(err error) bool {
	var notFoundErr *repository.NotFoundError
	return errors.As(err, &notFoundErr)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseRestaurantID reads a required numeric restaurant id.
func parseRestaurantID(value string) (int64, error) {
	if value == "" {
		return 0, errors.New("restaurant_id is required")
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("restaurant_id must be a positive integer")
	}

	return id, nil
}
