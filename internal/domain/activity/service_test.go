package activity_test

import (
	"context"
	"testing"

	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	pageID := "page1"

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		DriveID:      "drive1",
		PageID:       &pageID,
		ActivityType: activity.TypePageUpdated,
		ActorName:    "alice",
	}

	repo.On("Log", ctx, tenantID, entry).Return(nil)
	repo.On("List", ctx, tenantID, activity.ListActivityOptions{DriveID: "drive1"}).Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, tenantID, entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{DriveID: "drive1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_LogRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	svc := activity.NewService(repo, nil)

	require.ErrorIs(t, svc.LogActivity(ctx, "tenant1", nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "tenant1", &activity.ActivityEntry{}), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "tenant1", &activity.ActivityEntry{
		DriveID:      "drive1",
		ActivityType: "renamed",
	}), activity.ErrInvalidInput)
	repo.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivityService_KeepsProvidedID(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, "tenant1", mock.Anything).Return(nil)

	svc := activity.NewService(repo, nil)
	entry := &activity.ActivityEntry{ID: "a1", DriveID: "drive1"}
	require.NoError(t, svc.LogActivity(ctx, "tenant1", entry))
	require.Equal(t, "a1", entry.ID)
}
