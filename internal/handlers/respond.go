package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func requestID(r *http.Request) string {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: requestID(r),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: requestID(r),
		},
	}
}

// decodeBody reads a JSON request body into dst, answering 400 itself when
// the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("INVALID_BODY", "Request body must be valid JSON", r))
		return false
	}
	return true
}

func validationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
}

// statusFor maps a pipeline error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case services.CodeInvalidReference:
		return http.StatusBadRequest
	case services.CodeNoTranscript:
		return http.StatusNotFound
	case services.CodeNotConfigured:
		return http.StatusServiceUnavailable
	case services.CodeUpstream, services.CodeGeneration:
		return http.StatusBadGateway
	case services.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := services.ErrorCode(err)
	status := statusFor(code)

	message := err.Error()
	var schema *services.SchemaMismatchError
	switch {
	case status == http.StatusInternalServerError:
		message = "An unexpected error occurred"
	case errors.As(err, &schema):
		writeJSON(w, status, errorRespWithFields(code, message, map[string]string{schema.Path: schema.Reason}, r))
		return
	}
	writeJSON(w, status, errorResp(code, message, r))
}
