package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// Error codes carried in the error envelope.
const (
	CodeValidation   = "validation"
	CodeInvalidRange = "invalid_range"
	CodeNotFound     = "not_found"
	CodeStorage      = "storage"
	CodeInternal     = "internal"
	CodeRateLimited  = "rate_limited"
	CodeCanceled     = "canceled"
)

// ErrorBody is the value of the "error" envelope key.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
}

type envelope map[string]any

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorStatus maps the error taxonomy onto HTTP.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidRange):
		return http.StatusUnprocessableEntity, CodeInvalidRange
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeCanceled
	case errors.Is(err, model.ErrStorage):
		return http.StatusInternalServerError, CodeStorage
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func errorBody(err error) ErrorBody {
	_, code := errorStatus(err)
	body := ErrorBody{Code: code, Message: err.Error()}
	if code == CodeInternal {
		body.Message = "internal error"
	}
	if date, ok := model.FailedDate(err); ok {
		body.Date = date
	}
	return body
}

func respondError(w http.ResponseWriter, err error) {
	status, _ := errorStatus(err)
	respondJSON(w, status, envelope{"error": errorBody(err)})
}
