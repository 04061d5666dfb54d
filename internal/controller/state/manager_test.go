package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	s, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, s)

	editor := selection.NewEditor("Weekdays")
	require.NoError(t, editor.TogglePeriod(model.PeriodMorning))
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateEditing, Editor: editor, MessageID: 42}))

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.Editor)
	assert.Equal(t, StateEditing, got.State)
	assert.Equal(t, 42, got.MessageID)
	assert.Len(t, got.Editor.DaySlots(), 12)
	assert.Len(t, got.Editor.Pattern, 7)

	got.Editor.ClearAll()
	again, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, again.Editor.DaySlots(), 12, "sessions are copies until saved")
}

func TestManagerSaveNoneClears(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateApplyRange, Apply: &ApplyDraft{TemplateID: 3}}))
	require.Equal(t, 1, m.Len())

	require.NoError(t, m.Save(ctx, 1, &Session{}))
	assert.Zero(t, m.Len())
}

func TestManagerEvictIdle(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

	m.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateEditing}))
	m.now = func() time.Time { return now }
	require.NoError(t, m.Save(ctx, 2, &Session{State: StateEditing}))

	assert.Equal(t, 1, m.EvictIdle(30*time.Minute))
	s, err := m.Get(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSessionCodec(t *testing.T) {
	in := &Session{
		State: StateApplyConfirm,
		Apply: &ApplyDraft{TemplateID: 9, StartDate: "2025-01-06", EndDate: "2025-01-12", Overwrite: true},
	}
	data, err := encodeSession(in)
	require.NoError(t, err)

	out, err := decodeSession(data)
	require.NoError(t, err)
	assert.Equal(t, in.Apply, out.Apply)

	_, err = decodeSession([]byte("{"))
	assert.Error(t, err)
}

func TestManagerTakeIsExclusive(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateApplyConfirm, Apply: &ApplyDraft{TemplateID: 3}}))

	const callers = 16
	var (
		wg    sync.WaitGroup
		taken atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Take(ctx, 1, StateApplyConfirm)
			assert.NoError(t, err)
			if s != nil {
				assert.Equal(t, int64(3), s.Apply.TemplateID)
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), taken.Load(), "exactly one caller gets the session")
	assert.Zero(t, m.Len())
}

func TestManagerTakeOtherStateLeavesSession(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateEditing}))

	s, err := m.Take(ctx, 1, StateApplyConfirm)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 1, m.Len())

	s, err = m.Take(ctx, 2, StateEditing)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = m.Take(ctx, 1, StateTemplateName, StateEditing)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StateEditing, s.State)
	assert.Zero(t, m.Len())
}
