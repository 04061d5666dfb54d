package memory

import (
	"context"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// UserStore is the driver view of a Store.
type UserStore struct {
	s *Store
}

func (v *UserStore) Create(_ context.Context, user *model.User) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.id()
	user.CreatedAt = s.now()
	c := *user
	s.users[user.TelegramID] = &c
	return nil
}

func (v *UserStore) Update(_ context.Context, user *model.User) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *user
	s.users[user.TelegramID] = &c
	return nil
}

func (v *UserStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[telegramID]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}
