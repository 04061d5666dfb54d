package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/api"
	"github.com/Freeeeeet/driver_availability/internal/client"
	"github.com/Freeeeeet/driver_availability/internal/metrics"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/repository/memory"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

const userID = int64(7)

var clock = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }

// failingDays breaks Modify for one date.
type failingDays struct {
	service.DayStore
	failOn string
}

func (f *failingDays) Modify(ctx context.Context, userID int64, date string, fn service.DayMutation) (*model.DayAvailability, model.WriteOutcome, error) {
	if date == f.failOn {
		return nil, model.OutcomeUnchanged, errors.New("connection reset")
	}
	return f.DayStore.Modify(ctx, userID, date, fn)
}

type testServer struct {
	srv    *httptest.Server
	client *client.Client
	days   *failingDays
	reg    *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	days := &failingDays{DayStore: store.Days()}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := api.NewRouter(api.Deps{
		Availability: service.NewAvailabilityService(days, logger).WithClock(clock),
		Templates:    service.NewTemplateService(store.Templates(), logger),
		Applier:      service.NewTemplateApplier(store.Templates(), days, m, logger),
		Metrics:      m,
		Gatherer:     reg,
		Logger:       logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		srv:    srv,
		client: client.New(srv.URL, 5*time.Second, logger),
		days:   days,
		reg:    reg,
	}
}

func weekdayMornings() model.WeekPattern {
	p := model.WeekPattern{}
	for _, d := range []model.WeekdayKey{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		p[d] = model.SlotStatuses{"09:00": model.StatusAvailable, "09:30": model.StatusConditional}
	}
	return p
}

func TestTemplateLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tmpl, err := ts.client.CreateTemplate(ctx, userID, "Weekdays", weekdayMornings())
	require.NoError(t, err)
	assert.Equal(t, "Weekdays", tmpl.Name)
	assert.Len(t, tmpl.WeekPattern, 7, "pattern is normalized to all weekdays")
	assert.Empty(t, tmpl.WeekPattern[model.Sunday])

	name := "Renamed"
	updated, err := ts.client.UpdateTemplate(ctx, userID, tmpl.ID, client.TemplateUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 10, updated.WeekPattern.SlotCount())

	list, err := ts.client.ListTemplates(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ts.client.DeleteTemplate(ctx, userID, tmpl.ID))
	err = ts.client.DeleteTemplate(ctx, userID, tmpl.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateTemplateValidation(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.client.CreateTemplate(context.Background(), userID, "  ", weekdayMornings())
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ts.client.CreateTemplate(context.Background(), userID, "Empty", model.WeekPattern{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestApplyTemplate(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tmpl, err := ts.client.CreateTemplate(ctx, userID, "Weekdays", weekdayMornings())
	require.NoError(t, err)

	res, err := ts.client.ApplyTemplate(ctx, userID, tmpl.ID, "2025-01-06", "2025-01-12", false)
	require.NoError(t, err)
	assert.Equal(t, model.ApplyResult{Created: 5}, res)

	res, err = ts.client.ApplyTemplate(ctx, userID, tmpl.ID, "2025-01-06", "2025-01-12", false)
	require.NoError(t, err)
	assert.Equal(t, model.ApplyResult{Skipped: 5}, res)

	days, err := ts.client.ListAvailabilities(ctx, userID, "")
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.Equal(t, model.StatusConditional, days[0].SlotStatuses["09:30"])
}

func TestApplyTemplateErrors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tmpl, err := ts.client.CreateTemplate(ctx, userID, "Weekdays", weekdayMornings())
	require.NoError(t, err)

	_, err = ts.client.ApplyTemplate(ctx, userID, tmpl.ID, "2025-01-12", "2025-01-06", false)
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, err = ts.client.ApplyTemplate(ctx, userID, tmpl.ID, "2025-13-01", "2025-01-06", false)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ts.client.ApplyTemplate(ctx, userID, 999, "2025-01-06", "2025-01-12", false)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApplyTemplatePartialFailure(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tmpl, err := ts.client.CreateTemplate(ctx, userID, "Weekdays", weekdayMornings())
	require.NoError(t, err)

	ts.days.failOn = "2025-01-08"
	res, err := ts.client.ApplyTemplate(ctx, userID, tmpl.ID, "2025-01-06", "2025-01-12", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStorage)
	assert.Equal(t, model.ApplyResult{Created: 2}, res)

	date, ok := model.FailedDate(err)
	require.True(t, ok)
	assert.Equal(t, "2025-01-08", date)
}

func TestAvailabilityCRUD(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	day, err := ts.client.CreateAvailability(ctx, userID, "2025-01-02", model.SlotStatuses{"10:00": model.StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", day.Date)

	_, err = ts.client.CreateAvailability(ctx, userID, "2024-12-31", model.SlotStatuses{"10:00": model.StatusAvailable})
	assert.ErrorIs(t, err, model.ErrValidation, "past dates are rejected")

	_, err = ts.client.CreateAvailability(ctx, userID, "2025-01-03", model.SlotStatuses{"05:30": model.StatusAvailable})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ts.client.CreateAvailability(ctx, userID, "2025-01-02", model.SlotStatuses{"12:00": model.StatusAvailable})
	assert.ErrorIs(t, err, model.ErrValidation, "a second record for the date is a conflict")
	assert.NotErrorIs(t, err, model.ErrStorage)

	updated, err := ts.client.UpdateAvailability(ctx, userID, day.ID, model.SlotStatuses{"11:00": model.StatusNotAvailable})
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatuses{"11:00": model.StatusNotAvailable}, updated.SlotStatuses)

	list, err := ts.client.ListAvailabilities(ctx, userID, "2025-01-02")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ts.client.DeleteAvailability(ctx, userID, day.ID))
	assert.ErrorIs(t, ts.client.DeleteAvailability(ctx, userID, day.ID), model.ErrNotFound)
}

func TestLegacyPayloadIsMigrated(t *testing.T) {
	ts := newTestServer(t)

	body := `{"userId":7,"date":"2025-01-02","timeSlots":["09:00","09:30"],"availability":"conditional"}`
	resp, err := http.Post(ts.srv.URL+"/availabilities/add", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	days, err := ts.client.ListAvailabilities(context.Background(), userID, "2025-01-02")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, model.SlotStatuses{
		"09:00": model.StatusConditional,
		"09:30": model.StatusConditional,
	}, days[0].SlotStatuses)
}

func TestStatusMapping(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing user", http.MethodGet, "/availabilities/all", "", http.StatusBadRequest},
		{"bad id", http.MethodDelete, "/availability-templates/delete/abc?userId=7", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/availability-templates/add", "{", http.StatusBadRequest},
		{"unknown day", http.MethodPost, "/availability-templates/add", `{"userId":7,"name":"x","weekPattern":{"funday":{}}}`, http.StatusBadRequest},
		{"inverted range", http.MethodPost, "/availability-templates/apply/1", `{"userId":7,"startDate":"2025-02-01","endDate":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"missing template", http.MethodPost, "/availability-templates/apply/1", `{"userId":7,"startDate":"2025-01-01","endDate":"2025-01-02"}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.srv.URL+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(api.RequestIDHeader))
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	families, err := ts.reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "driver_availability_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(api.RequestIDHeader))
}

func TestReadyzReportsFailure(t *testing.T) {
	router := api.NewRouter(api.Deps{
		Logger: zap.NewNop(),
		Ready:  func(context.Context) error { return errors.New("pool closed") },
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	store := memory.NewStore()
	logger := zap.NewNop()
	router := api.NewRouter(api.Deps{
		Availability: service.NewAvailabilityService(store.Days(), logger),
		Templates:    service.NewTemplateService(store.Templates(), logger),
		Applier:      service.NewTemplateApplier(store.Templates(), store.Days(), nil, logger),
		Logger:       logger,
		RateLimit:    api.RateLimit{PerSecond: 0.001, Burst: 2, TrustProxy: true},
	})

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/availability-templates/all?userId=7", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))

	// health checks are not throttled
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
