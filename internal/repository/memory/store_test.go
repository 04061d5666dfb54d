package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

const (
	testUser = int64(1)
	testDate = "2025-01-06"
)

func seedDay(t *testing.T, days *DayStore) *model.DayAvailability {
	t.Helper()
	day := &model.DayAvailability{
		UserID:       testUser,
		Date:         testDate,
		SlotStatuses: model.SlotStatuses{"09:00": model.StatusAvailable},
	}
	require.NoError(t, days.Create(context.Background(), day))
	return day
}

func TestDeleteWaitsForModifyOnSameDate(t *testing.T) {
	days := NewStore().Days()
	ctx := context.Background()
	day := seedDay(t, days)

	deleted := make(chan bool, 1)
	got, outcome, err := days.Modify(ctx, testUser, testDate, func(existing *model.DayAvailability) (model.SlotStatuses, bool) {
		go func() {
			ok, _ := days.Delete(ctx, testUser, existing.ID)
			deleted <- ok
		}()
		select {
		case <-deleted:
			t.Error("delete ran while the date was being modified")
		case <-time.After(50 * time.Millisecond):
		}
		return model.SlotStatuses{"10:00": model.StatusConditional}, true
	})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeUpdated, outcome)
	assert.Equal(t, day.ID, got.ID)

	assert.True(t, <-deleted, "delete proceeds once the write is done")
	after, err := days.Get(ctx, testUser, testDate)
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestUpdateMissingRecord(t *testing.T) {
	s := NewStore()
	days := s.Days()
	day := seedDay(t, days)

	ok, err := days.Delete(context.Background(), testUser, day.ID)
	require.NoError(t, err)
	require.True(t, ok)

	err = days.Update(context.Background(), day)
	assert.ErrorIs(t, err, model.ErrNotFound)

	s.mu.Lock()
	err = s.updateLocked(day)
	s.mu.Unlock()
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateOtherUsersRecord(t *testing.T) {
	days := NewStore().Days()
	day := seedDay(t, days)

	foreign := *day
	foreign.UserID = testUser + 1
	assert.ErrorIs(t, days.Update(context.Background(), &foreign), model.ErrNotFound)

	got, err := days.Get(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Equal(t, day.SlotStatuses, got.SlotStatuses)
}

func TestCreateDuplicateDate(t *testing.T) {
	days := NewStore().Days()
	seedDay(t, days)

	dup := &model.DayAvailability{UserID: testUser, Date: testDate, SlotStatuses: model.SlotStatuses{"12:00": model.StatusAvailable}}
	err := days.Create(context.Background(), dup)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestModifyRespectsCancelledContext(t *testing.T) {
	days := NewStore().Days()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, outcome, err := days.Modify(ctx, testUser, testDate, func(*model.DayAvailability) (model.SlotStatuses, bool) {
		called = true
		return nil, false
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.OutcomeUnchanged, outcome)
	assert.False(t, called)
}
