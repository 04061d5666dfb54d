package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// TemplateStore is the template view of a Store.
type TemplateStore struct {
	s *Store
}

func (v *TemplateStore) Get(_ context.Context, userID, id int64) (*model.AvailabilityTemplate, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return cloneTemplate(t), nil
}

func (v *TemplateStore) List(_ context.Context, userID int64) ([]*model.AvailabilityTemplate, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.AvailabilityTemplate, 0)
	for _, t := range s.templates {
		if t.UserID == userID {
			out = append(out, cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (v *TemplateStore) Create(_ context.Context, t *model.AvailabilityTemplate) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t.ID = s.id()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (v *TemplateStore) Update(_ context.Context, t *model.AvailabilityTemplate) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.templates[t.ID]
	if !ok || stored.UserID != t.UserID {
		return fmt.Errorf("%w: template %d", model.ErrNotFound, t.ID)
	}
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = s.now()
	s.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (v *TemplateStore) Delete(_ context.Context, userID, id int64) (bool, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(s.templates, id)
	return true, nil
}
