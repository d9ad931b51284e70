package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/mocks"
)

func TestNewRunner_RequiresDatabase(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Config: config.ReaperConfig{Schedule: "@every 1m"}})
	require.Error(t, err)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBulkUpdateReaper(ctrl)
	repo.EXPECT().CloseStale(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	r, err := NewRunner(RunnerOptions{
		Repo:   repo,
		Config: config.ReaperConfig{Schedule: "@every 1h", StaleAfter: time.Hour},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}
