package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		var out []*model.AvailabilityTemplate
		err := decodeEnvelope([]byte(`{"templates":[{"id":1,"name":"A","weekPattern":{"mon":{"09:00":"available"}}}]}`), "templates", &out)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Len(t, out[0].WeekPattern, 7)
	})

	t.Run("empty list is valid", func(t *testing.T) {
		var out []*model.DayAvailability
		require.NoError(t, decodeEnvelope([]byte(`{"availabilities":[]}`), "availabilities", &out))
		assert.Empty(t, out)
	})

	malformed := map[string]string{
		"missing key": `{"template":{}}`,
		"null value":  `{"templates":null}`,
		"not json":    `<html>bad gateway</html>`,
		"wrong type":  `{"templates":"oops"}`,
		"bad error":   `{"error":"boom"}`,
	}
	for name, body := range malformed {
		t.Run(name, func(t *testing.T) {
			var out []*model.AvailabilityTemplate
			err := decodeEnvelope([]byte(body), "templates", &out)
			assert.ErrorIs(t, err, model.ErrMalformedResponse)
		})
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	cases := map[string]error{
		"validation":    model.ErrValidation,
		"invalid_range": model.ErrInvalidRange,
		"not_found":     model.ErrNotFound,
		"storage":       model.ErrStorage,
		"rate_limited":  ErrRateLimited,
		"unknown":       model.ErrStorage,
	}
	for code, want := range cases {
		var out model.ApplyResult
		err := decodeEnvelope([]byte(`{"error":{"code":"`+code+`","message":"x"}}`), "result", &out)
		assert.ErrorIs(t, err, want, code)
	}
}

func TestDecodeEnvelopePartialResult(t *testing.T) {
	body := `{"result":{"created":2,"updated":0,"skipped":1},"error":{"code":"storage","message":"down","date":"2025-01-08"}}`

	var out model.ApplyResult
	err := decodeEnvelope([]byte(body), "result", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStorage)
	assert.Equal(t, model.ApplyResult{Created: 2, Skipped: 1}, out)

	date, ok := model.FailedDate(err)
	require.True(t, ok)
	assert.Equal(t, "2025-01-08", date)
}

func TestClientMalformedServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		_, _ = w.Write([]byte(`{"availabilities":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, nil)
	_, err := c.ListAvailabilities(context.Background(), 7, "")
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}
