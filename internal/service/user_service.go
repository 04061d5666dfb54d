package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"go.uber.org/zap"
)

// UserStore persists drivers. GetByTelegramID returns (nil, nil) when unknown.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// RegisterUser creates the driver on first contact and refreshes the profile afterwards.
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	if existing != nil {
		if existing.Username == username && existing.FirstName == firstName &&
			existing.LastName == lastName && existing.LanguageCode == languageCode {
			return existing, nil
		}

		existing.Username = username
		existing.FirstName = firstName
		existing.LastName = lastName
		existing.LanguageCode = languageCode
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.logger.Info("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
		return existing, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)
	return user, nil
}

// GetByTelegramID returns the driver or nil when not registered.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}
