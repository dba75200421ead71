package mocks

import (
	"context"

	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// VersionRepository is a mock for version.Repository.
type VersionRepository struct {
	mock.Mock
}

func (m *VersionRepository) Create(ctx context.Context, tenantID string, v *version.Version) error {
	args := m.Called(ctx, tenantID, v)
	return args.Error(0)
}

func (m *VersionRepository) FindLatest(ctx context.Context, tenantID, pageID, changeGroupID string) (*version.Version, error) {
	args := m.Called(ctx, tenantID, pageID, changeGroupID)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionRepository) FindByPageChangeGroups(ctx context.Context, tenantID string, pairs []version.PageChangeGroup) ([]version.Version, error) {
	args := m.Called(ctx, tenantID, pairs)
	if list, ok := args.Get(0).([]version.Version); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
