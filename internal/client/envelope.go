package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// ErrRateLimited is returned when the server throttled the caller.
var ErrRateLimited = errors.New("rate limited")

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

var codeErrors = map[string]error{
	"validation":    model.ErrValidation,
	"invalid_range": model.ErrInvalidRange,
	"not_found":     model.ErrNotFound,
	"storage":       model.ErrStorage,
	"rate_limited":  ErrRateLimited,
}

// toError maps an error envelope back onto the sentinel taxonomy.
func (e errorBody) toError() error {
	sentinel, ok := codeErrors[e.Code]
	if !ok {
		sentinel = model.ErrStorage
	}
	err := fmt.Errorf("%w: %s", sentinel, e.Message)
	if e.Date != "" {
		return &model.DateError{Date: e.Date, Err: err}
	}
	return err
}

// decodeEnvelope unmarshals the value under key into out. An error envelope
// becomes the matching sentinel; a body without key, or with key set to null,
// is ErrMalformedResponse.
func decodeEnvelope(body []byte, key string, out any) error {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	raw, ok := env[key]
	if !ok || isNull(raw) {
		if errRaw, has := env["error"]; has && !isNull(errRaw) {
			return decodeErrorBody(errRaw)
		}
		return fmt.Errorf("%w: missing %q", model.ErrMalformedResponse, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %q: %v", model.ErrMalformedResponse, key, err)
	}

	if errRaw, has := env["error"]; has && !isNull(errRaw) {
		return decodeErrorBody(errRaw)
	}
	return nil
}

func decodeErrorBody(raw json.RawMessage) error {
	var e errorBody
	if err := json.Unmarshal(raw, &e); err != nil || e.Code == "" {
		return fmt.Errorf("%w: unreadable error envelope", model.ErrMalformedResponse)
	}
	return e.toError()
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
