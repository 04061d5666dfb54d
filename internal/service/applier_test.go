package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/repository/memory"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

const userID = int64(7)

// 2025-01-06 is a Monday.
const (
	monday = "2025-01-06"
	sunday = "2025-01-12"
)

type applierEnv struct {
	store     *memory.Store
	days      *countingDays
	templates *service.TemplateService
	applier   *service.TemplateApplier
}

func newApplierEnv(t *testing.T) *applierEnv {
	t.Helper()
	store := memory.NewStore()
	days := &countingDays{DayStore: store.Days()}
	logger := zap.NewNop()
	return &applierEnv{
		store:     store,
		days:      days,
		templates: service.NewTemplateService(store.Templates(), logger),
		applier:   service.NewTemplateApplier(store.Templates(), days, nil, logger),
	}
}

func (e *applierEnv) template(t *testing.T, pattern model.WeekPattern) int64 {
	t.Helper()
	tmpl, err := e.templates.Create(context.Background(), userID, "Week", pattern)
	require.NoError(t, err)
	return tmpl.ID
}

func (e *applierEnv) apply(t *testing.T, id int64, start, end string, overwrite bool) model.ApplyResult {
	t.Helper()
	res, err := e.applier.Apply(context.Background(), service.ApplyRequest{
		UserID: userID, TemplateID: id, StartDate: start, EndDate: end, Overwrite: overwrite,
	})
	require.NoError(t, err)
	return res
}

func (e *applierEnv) day(t *testing.T, date string) *model.DayAvailability {
	t.Helper()
	d, err := e.store.Days().Get(context.Background(), userID, date)
	require.NoError(t, err)
	return d
}

// countingDays counts Modify calls and can fail on a given date.
type countingDays struct {
	service.DayStore
	calls  atomic.Int32
	failOn string
}

func (c *countingDays) Modify(ctx context.Context, uid int64, date string, fn service.DayMutation) (*model.DayAvailability, model.WriteOutcome, error) {
	c.calls.Add(1)
	if date == c.failOn {
		return nil, model.OutcomeUnchanged, errors.New("connection reset")
	}
	return c.DayStore.Modify(ctx, uid, date, fn)
}

func mondayNine(status model.AvailabilityStatus) model.WeekPattern {
	return model.WeekPattern{model.Monday: {"09:00": status}}
}

func TestApplyCreatesOnlyPatternDays(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))

	res := env.apply(t, id, monday, sunday, true)
	assert.Equal(t, model.ApplyResult{Created: 1}, res)

	d := env.day(t, monday)
	require.NotNil(t, d)
	assert.Equal(t, model.SlotStatuses{"09:00": model.StatusAvailable}, d.SlotStatuses)
	assert.Nil(t, env.day(t, "2025-01-07"), "days without a pattern are not touched")
}

func TestApplyMergeSkipsWhenAlreadyPresent(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))
	env.apply(t, id, monday, sunday, true)

	res := env.apply(t, id, monday, sunday, false)
	assert.Equal(t, model.ApplyResult{Skipped: 1}, res)

	again := env.apply(t, id, monday, sunday, false)
	assert.Equal(t, res, again, "a skipped-only run is a fixed point")
}

func TestApplyExistingValueWinsOnMerge(t *testing.T) {
	env := newApplierEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Days().Create(ctx, &model.DayAvailability{
		UserID: userID, Date: monday,
		SlotStatuses: model.SlotStatuses{"09:00": model.StatusNotAvailable},
	}))
	id := env.template(t, mondayNine(model.StatusAvailable))

	res := env.apply(t, id, monday, monday, false)
	assert.Equal(t, model.ApplyResult{Skipped: 1}, res)
	assert.Equal(t, model.StatusNotAvailable, env.day(t, monday).SlotStatuses["09:00"])

	res = env.apply(t, id, monday, monday, true)
	assert.Equal(t, model.ApplyResult{Updated: 1}, res)
	assert.Equal(t, model.SlotStatuses{"09:00": model.StatusAvailable}, env.day(t, monday).SlotStatuses)
}

func TestApplyMergeAddsMissingSlots(t *testing.T) {
	env := newApplierEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Days().Create(ctx, &model.DayAvailability{
		UserID: userID, Date: monday,
		SlotStatuses: model.SlotStatuses{"09:00": model.StatusNotAvailable},
	}))
	id := env.template(t, model.WeekPattern{model.Monday: {
		"09:00": model.StatusAvailable,
		"09:30": model.StatusConditional,
	}})

	res := env.apply(t, id, monday, monday, false)
	assert.Equal(t, model.ApplyResult{Updated: 1}, res)
	assert.Equal(t, model.SlotStatuses{
		"09:00": model.StatusNotAvailable,
		"09:30": model.StatusConditional,
	}, env.day(t, monday).SlotStatuses)
}

func TestApplyOverwriteIsIdempotent(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, model.WeekPattern{
		model.Monday:    {"09:00": model.StatusAvailable},
		model.Wednesday: {"18:00": model.StatusConditional},
		model.Saturday:  {"06:00": model.StatusNotAvailable},
	})

	first := env.apply(t, id, monday, "2025-01-19", true)
	assert.Equal(t, model.ApplyResult{Created: 6}, first)

	second := env.apply(t, id, monday, "2025-01-19", true)
	assert.Equal(t, model.ApplyResult{Updated: 6}, second)
}

func TestApplyConservation(t *testing.T) {
	env := newApplierEnv(t)
	ctx := context.Background()
	id := env.template(t, model.WeekPattern{
		model.Monday:   {"09:00": model.StatusAvailable},
		model.Tuesday:  {"10:00": model.StatusAvailable},
		model.Thursday: {"11:00": model.StatusAvailable},
	})
	// Pre-existing Tuesday with the same slot and Thursday with a different one.
	require.NoError(t, env.store.Days().Create(ctx, &model.DayAvailability{
		UserID: userID, Date: "2025-01-07", SlotStatuses: model.SlotStatuses{"10:00": model.StatusAvailable},
	}))
	require.NoError(t, env.store.Days().Create(ctx, &model.DayAvailability{
		UserID: userID, Date: "2025-01-09", SlotStatuses: model.SlotStatuses{"20:00": model.StatusAvailable},
	}))

	// Two weeks: 6 pattern days.
	res := env.apply(t, id, monday, "2025-01-19", false)
	assert.Equal(t, 6, res.Total())
	assert.Equal(t, model.ApplyResult{Created: 4, Updated: 1, Skipped: 1}, res)
}

func TestApplySingleDayBoundary(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))

	assert.Equal(t, model.ApplyResult{Created: 1}, env.apply(t, id, monday, monday, false))
	assert.Equal(t, model.ApplyResult{}, env.apply(t, id, "2025-01-07", "2025-01-07", false))
}

func TestApplyInvalidRangeDoesNotTouchStorage(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))

	res, err := env.applier.Apply(context.Background(), service.ApplyRequest{
		UserID: userID, TemplateID: id, StartDate: sunday, EndDate: monday,
	})
	assert.ErrorIs(t, err, model.ErrInvalidRange)
	assert.Equal(t, model.ApplyResult{}, res)
	assert.Zero(t, env.days.calls.Load())

	_, err = env.applier.Apply(context.Background(), service.ApplyRequest{
		UserID: userID, TemplateID: id, StartDate: "06/01/2025", EndDate: sunday,
	})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, env.days.calls.Load())
}

func TestApplyUnknownTemplate(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))

	_, err := env.applier.Apply(context.Background(), service.ApplyRequest{
		UserID: userID + 1, TemplateID: id, StartDate: monday, EndDate: sunday,
	})
	assert.ErrorIs(t, err, model.ErrNotFound, "templates of other users are invisible")
}

func TestApplyStorageFailureReturnsPartialResult(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, model.WeekPattern{
		model.Monday:    {"09:00": model.StatusAvailable},
		model.Tuesday:   {"09:00": model.StatusAvailable},
		model.Wednesday: {"09:00": model.StatusAvailable},
	})
	env.days.failOn = "2025-01-08"

	res, err := env.applier.Apply(context.Background(), service.ApplyRequest{
		UserID: userID, TemplateID: id, StartDate: monday, EndDate: sunday,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStorage)
	assert.Equal(t, model.ApplyResult{Created: 2}, res)

	date, ok := model.FailedDate(err)
	require.True(t, ok)
	assert.Equal(t, "2025-01-08", date)

	// Resuming from the failing date completes the range.
	env.days.failOn = ""
	resumed := env.apply(t, id, date, sunday, false)
	assert.Equal(t, model.ApplyResult{Created: 1}, resumed)
}

func TestApplyStopsOnCancellation(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, mondayNine(model.StatusAvailable))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := env.applier.Apply(ctx, service.ApplyRequest{
		UserID: userID, TemplateID: id, StartDate: monday, EndDate: sunday,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.ApplyResult{}, res)

	date, ok := model.FailedDate(err)
	require.True(t, ok)
	assert.Equal(t, monday, date)
}

// cancellingDays cancels the caller's context just before the write.
type cancellingDays struct {
	service.DayStore
	cancel context.CancelFunc
}

func (c *cancellingDays) Modify(ctx context.Context, uid int64, date string, fn service.DayMutation) (*model.DayAvailability, model.WriteOutcome, error) {
	c.cancel()
	return c.DayStore.Modify(ctx, uid, date, fn)
}

func TestApplyCancelledMidWriteIsNotStorageFailure(t *testing.T) {
	store := memory.NewStore()
	logger := zap.NewNop()
	templates := service.NewTemplateService(store.Templates(), logger)
	tmpl, err := templates.Create(context.Background(), userID, "Week", mondayNine(model.StatusAvailable))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	applier := service.NewTemplateApplier(store.Templates(), &cancellingDays{DayStore: store.Days(), cancel: cancel}, nil, logger)

	res, err := applier.Apply(ctx, service.ApplyRequest{
		UserID: userID, TemplateID: tmpl.ID, StartDate: monday, EndDate: sunday,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, model.ErrStorage)
	assert.Equal(t, model.ApplyResult{}, res)

	date, ok := model.FailedDate(err)
	require.True(t, ok)
	assert.Equal(t, monday, date)
}

func TestConcurrentAppliesDoNotDoubleCreate(t *testing.T) {
	env := newApplierEnv(t)
	id := env.template(t, model.WeekPattern{
		model.Monday: {"09:00": model.StatusAvailable},
		model.Friday: {"17:00": model.StatusAvailable},
	})

	const workers = 8
	results := make([]model.ApplyResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := env.applier.Apply(context.Background(), service.ApplyRequest{
				UserID: userID, TemplateID: id, StartDate: monday, EndDate: "2025-01-19",
			})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	var created, skipped int
	for _, r := range results {
		created += r.Created
		skipped += r.Skipped
	}
	assert.Equal(t, 4, created, "each date is created exactly once")
	assert.Equal(t, workers*4-4, skipped)
}
