package featureflags

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepository always errors, to exercise the default fallback.
type failingRepository struct{}

func (failingRepository) GetFlag(context.Context, string) (*Flag, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) GetAllFlags(context.Context) (map[string]*Flag, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) SetFlag(context.Context, *Flag) error {
	return errors.New("connection refused")
}

func (failingRepository) SetFlags(context.Context, []*Flag) error {
	return errors.New("connection refused")
}

func (failingRepository) DeleteFlag(context.Context, string) error {
	return errors.New("connection refused")
}

func newTestService(repo Repository) *Service {
	return NewService(ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   time.Minute,
	})
}

func TestKillSwitchesDefaultOff(t *testing.T) {
	service := newTestService(NewInMemoryRepository())

	assert.False(t, service.IsAIAssistDisabled(context.Background()))
	assert.False(t, service.IsRetentionSweepDisabled(context.Background()))
}

func TestKillSwitchToggle(t *testing.T) {
	repo := NewInMemoryRepository()
	service := newTestService(repo)

	require.NoError(t, service.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableRetentionSweep,
		Value: true,
	}))

	assert.True(t, service.IsRetentionSweepDisabled(context.Background()))
	assert.False(t, service.IsAIAssistDisabled(context.Background()))

	require.NoError(t, service.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableRetentionSweep,
		Value: false,
	}))
	service.InvalidateCache()

	assert.False(t, service.IsRetentionSweepDisabled(context.Background()))
}

func TestRepositoryFailureFallsBackToDefaults(t *testing.T) {
	service := newTestService(failingRepository{})

	// Kill switches default to off, so a dead repository keeps the
	// pipeline running rather than pausing it.
	assert.False(t, service.IsAIAssistDisabled(context.Background()))
	assert.False(t, service.IsRetentionSweepDisabled(context.Background()))
}

func TestGetFlagCaches(t *testing.T) {
	repo := NewInMemoryRepository()
	require.NoError(t, repo.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableAIAssist,
		Value: true,
	}))
	service := newTestService(repo)

	assert.True(t, service.IsAIAssistDisabled(context.Background()))

	// A repository write without invalidation is not observed while the
	// cache entry is fresh.
	require.NoError(t, repo.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableAIAssist,
		Value: false,
	}))
	assert.True(t, service.IsAIAssistDisabled(context.Background()))

	service.InvalidateCache()
	assert.False(t, service.IsAIAssistDisabled(context.Background()))
}

func TestGetAllFlagsMergesDefaults(t *testing.T) {
	repo := NewInMemoryRepository()
	require.NoError(t, repo.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableAIAssist,
		Value: true,
	}))
	service := newTestService(repo)

	flags := service.GetAllFlags(context.Background())

	require.Contains(t, flags, FlagDisableAIAssist)
	require.Contains(t, flags, FlagDisableRetentionSweep)
	assert.True(t, flags[FlagDisableAIAssist].BoolValue(false))
	assert.False(t, flags[FlagDisableRetentionSweep].BoolValue(false))
}

func TestSetFlagsAtomicUpdate(t *testing.T) {
	repo := NewInMemoryRepository()
	service := newTestService(repo)

	require.NoError(t, service.SetFlags(context.Background(), []*Flag{
		{Key: FlagDisableAIAssist, Value: true},
		{Key: FlagDisableRetentionSweep, Value: true},
	}))

	assert.True(t, service.IsAIAssistDisabled(context.Background()))
	assert.True(t, service.IsRetentionSweepDisabled(context.Background()))
}

func TestDeleteFlagRevertsToDefault(t *testing.T) {
	repo := NewInMemoryRepository()
	service := newTestService(repo)

	require.NoError(t, service.SetFlag(context.Background(), &Flag{
		Key:   FlagDisableAIAssist,
		Value: true,
	}))
	assert.True(t, service.IsAIAssistDisabled(context.Background()))

	require.NoError(t, repo.DeleteFlag(context.Background(), FlagDisableAIAssist))
	service.InvalidateCache()

	assert.False(t, service.IsAIAssistDisabled(context.Background()))
}
