package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"go.uber.org/zap"
)

type TemplateService struct {
	templates TemplateStore
	logger    *zap.Logger
}

func NewTemplateService(templates TemplateStore, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		logger:    logger,
	}
}

// TemplatePatch carries the fields of an update. Nil fields are left as they are.
type TemplatePatch struct {
	Name        *string           `json:"name,omitempty"`
	WeekPattern model.WeekPattern `json:"weekPattern,omitempty"`
}

// Create validates and stores a new template.
func (s *TemplateService) Create(ctx context.Context, userID int64, name string, pattern model.WeekPattern) (*model.AvailabilityTemplate, error) {
	pattern = model.NormalizeWeekPattern(pattern)
	if err := model.ValidateTemplate(name, pattern); err != nil {
		return nil, err
	}

	t := &model.AvailabilityTemplate{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		WeekPattern: pattern,
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, storageError(ctx, "create template", err)
	}

	s.logger.Info("Template created",
		zap.Int64("user_id", userID),
		zap.Int64("template_id", t.ID),
		zap.Int("slots", pattern.SlotCount()),
	)
	return t, nil
}

// Get returns the user's template or ErrNotFound.
func (s *TemplateService) Get(ctx context.Context, userID, id int64) (*model.AvailabilityTemplate, error) {
	t, err := s.templates.Get(ctx, userID, id)
	if err != nil {
		return nil, storageError(ctx, "get template", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: template %d", model.ErrNotFound, id)
	}
	t.WeekPattern = model.NormalizeWeekPattern(t.WeekPattern)
	return t, nil
}

// List returns the user's templates ordered by name.
func (s *TemplateService) List(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error) {
	list, err := s.templates.List(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, "list templates", err)
	}
	for _, t := range list {
		t.WeekPattern = model.NormalizeWeekPattern(t.WeekPattern)
	}
	return list, nil
}

// Update replaces the fields present in patch. The result must still satisfy the create rules.
func (s *TemplateService) Update(ctx context.Context, userID, id int64, patch TemplatePatch) (*model.AvailabilityTemplate, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.WeekPattern != nil {
		t.WeekPattern = model.NormalizeWeekPattern(patch.WeekPattern)
	}
	if err := model.ValidateTemplate(t.Name, t.WeekPattern); err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, t); err != nil {
		return nil, storageError(ctx, "update template", err)
	}

	s.logger.Info("Template updated",
		zap.Int64("user_id", userID),
		zap.Int64("template_id", id),
	)
	return t, nil
}

// Delete removes the template. Deleting a missing template, including a second delete, is ErrNotFound.
func (s *TemplateService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.templates.Delete(ctx, userID, id)
	if err != nil {
		return storageError(ctx, "delete template", err)
	}
	if !deleted {
		return fmt.Errorf("%w: template %d", model.ErrNotFound, id)
	}

	s.logger.Info("Template deleted",
		zap.Int64("user_id", userID),
		zap.Int64("template_id", id),
	)
	return nil
}
