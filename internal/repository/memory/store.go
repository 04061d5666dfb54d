// Package memory keeps users, templates and day records in process memory.
// It backs the STORAGE=memory mode and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

type dayKey struct {
	userID int64
	date   string
}

type Store struct {
	mu        sync.RWMutex
	nextID    int64
	days      map[int64]*model.DayAvailability
	byDate    map[dayKey]int64
	templates map[int64]*model.AvailabilityTemplate
	users     map[int64]*model.User // telegramID -> user

	locks *keyedMutex
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		days:      make(map[int64]*model.DayAvailability),
		byDate:    make(map[dayKey]int64),
		templates: make(map[int64]*model.AvailabilityTemplate),
		users:     make(map[int64]*model.User),
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

var (
	_ service.DayStore      = (*DayStore)(nil)
	_ service.TemplateStore = (*TemplateStore)(nil)
	_ service.UserStore     = (*UserStore)(nil)
)

// DayStore is the day record view of a Store.
type DayStore struct {
	s *Store
}

// Days returns a DayStore view of the same memory.
func (s *Store) Days() *DayStore {
	return &DayStore{s: s}
}

// Templates returns a TemplateStore view of the same memory.
func (s *Store) Templates() *TemplateStore {
	return &TemplateStore{s: s}
}

// Users returns a UserStore view of the same memory.
func (s *Store) Users() *UserStore {
	return &UserStore{s: s}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Day records

func (v *DayStore) GetByID(_ context.Context, userID, id int64) (*model.DayAvailability, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.days[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return cloneDay(d), nil
}

func (v *DayStore) Get(_ context.Context, userID int64, date string) (*model.DayAvailability, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(userID, date), nil
}

func (s *Store) getLocked(userID int64, date string) *model.DayAvailability {
	id, ok := s.byDate[dayKey{userID, date}]
	if !ok {
		return nil
	}
	return cloneDay(s.days[id])
}

func (v *DayStore) List(_ context.Context, userID int64, date string) ([]*model.DayAvailability, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.DayAvailability, 0)
	for _, d := range s.days {
		if d.UserID != userID || (date != "" && d.Date != date) {
			continue
		}
		out = append(out, cloneDay(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (v *DayStore) Create(_ context.Context, day *model.DayAvailability) error {
	s := v.s
	key := dayKey{day.UserID, day.Date}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byDate[key]; exists {
		return fmt.Errorf("%w: day %s for user %d", model.ErrAlreadyExists, day.Date, day.UserID)
	}
	s.createLocked(day)
	return nil
}

func (s *Store) createLocked(day *model.DayAvailability) {
	now := s.now()
	day.ID = s.id()
	day.CreatedAt = now
	day.UpdatedAt = now
	s.days[day.ID] = cloneDay(day)
	s.byDate[dayKey{day.UserID, day.Date}] = day.ID
}

func (v *DayStore) Update(_ context.Context, day *model.DayAvailability) error {
	s := v.s
	key := dayKey{day.UserID, day.Date}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(day)
}

func (s *Store) updateLocked(day *model.DayAvailability) error {
	stored, ok := s.days[day.ID]
	if !ok || stored.UserID != day.UserID {
		return fmt.Errorf("%w: day %d", model.ErrNotFound, day.ID)
	}
	day.UpdatedAt = s.now()
	day.CreatedAt = stored.CreatedAt
	s.days[day.ID] = cloneDay(day)
	return nil
}

// Delete waits for any Modify running on the record's date.
func (v *DayStore) Delete(_ context.Context, userID, id int64) (bool, error) {
	s := v.s
	s.mu.RLock()
	d, ok := s.days[id]
	s.mu.RUnlock()
	if !ok || d.UserID != userID {
		return false, nil
	}

	key := dayKey{d.UserID, d.Date}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[id]; !ok {
		return false, nil
	}
	delete(s.days, id)
	delete(s.byDate, key)
	return true, nil
}

// Modify holds the (user, date) lock for the read, the decision and the write.
func (v *DayStore) Modify(ctx context.Context, userID int64, date string, fn service.DayMutation) (*model.DayAvailability, model.WriteOutcome, error) {
	s := v.s
	key := dayKey{userID, date}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := ctx.Err(); err != nil {
		return nil, model.OutcomeUnchanged, err
	}

	s.mu.RLock()
	existing := s.getLocked(userID, date)
	s.mu.RUnlock()

	next, write := fn(existing)
	if !write {
		return existing, model.OutcomeUnchanged, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing == nil {
		day := &model.DayAvailability{UserID: userID, Date: date, SlotStatuses: next.Clone()}
		s.createLocked(day)
		return cloneDay(day), model.OutcomeCreated, nil
	}
	existing.SlotStatuses = next.Clone()
	if err := s.updateLocked(existing); err != nil {
		return nil, model.OutcomeUnchanged, err
	}
	return cloneDay(existing), model.OutcomeUpdated, nil
}

func cloneDay(d *model.DayAvailability) *model.DayAvailability {
	if d == nil {
		return nil
	}
	c := *d
	c.SlotStatuses = d.SlotStatuses.Clone()
	return &c
}

func cloneTemplate(t *model.AvailabilityTemplate) *model.AvailabilityTemplate {
	c := *t
	c.WeekPattern = t.WeekPattern.Clone()
	return &c
}
