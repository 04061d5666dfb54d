package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/repository/memory"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

func TestRegisterUser(t *testing.T) {
	svc := service.NewUserService(memory.NewStore().Users(), zap.NewNop())
	ctx := context.Background()

	missing, err := svc.GetByTelegramID(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := svc.RegisterUser(ctx, 100, "ivan", "Ivan", "", "en")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	again, err := svc.RegisterUser(ctx, 100, "ivan", "Ivan", "", "en")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "registering twice keeps the same driver")

	renamed, err := svc.RegisterUser(ctx, 100, "ivan_k", "Ivan", "K", "en")
	require.NoError(t, err)
	assert.Equal(t, first.ID, renamed.ID)

	got, err := svc.GetByTelegramID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ivan_k", got.Username)
	assert.Equal(t, "K", got.LastName)
}
