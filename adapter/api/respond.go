package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details validation.Errors `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes outside the validation set.
const (
	CodeRateLimited = "ERR_RATE_LIMITED"
	CodeNotFound    = "ERR_NOT_FOUND"
	CodeInternal    = "ERR_INTERNAL"
)

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    string(validation.CodeMissingField),
		Message: "Invalid input data. Please check your tasks format.",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: "Resource not found",
	}
	ErrRateLimited = &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: "Rate limit exceeded. Please retry later.",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
	}
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeAPIError(w http.ResponseWriter, apiErr *APIError) {
	writeJSON(w, apiErr.Status, Envelope{Error: apiErr})
}

// writeError maps err onto an API error. Validation failures become 400s
// carrying every detail; unknown stored tasks become 404s.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, apiErr)
		return
	}

	if validation.IsValidationError(err) {
		out := &APIError{
			Status:  http.StatusBadRequest,
			Code:    string(validation.CodeOf(err)),
			Message: err.Error(),
		}
		var many validation.Errors
		var one *validation.Error
		switch {
		case errors.As(err, &many):
			out.Details = many
			out.Message = many[0].Message
		case errors.As(err, &one):
			out.Details = validation.Errors{one}
			out.Message = one.Message
		}
		writeAPIError(w, out)
		return
	}

	if errors.Is(err, task.ErrNotFound) {
		writeAPIError(w, ErrNotFound)
		return
	}

	logger.Error("request failed", "error", err)
	writeAPIError(w, ErrInternalServer)
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    ErrBadRequest.Code,
			Message: ErrBadRequest.Message + " " + err.Error(),
		}
	}
	return nil
}

const maxBodyBytes = 1 << 20
