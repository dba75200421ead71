package version_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/rpggio/stackdiff/internal/repository"
	"github.com/rpggio/stackdiff/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVersionService_Resolve(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	repo := &mocks.VersionRepository{}
	repo.On("FindLatest", ctx, tenantID, "P1", "cg1").Return(&version.Version{
		PageID:        "P1",
		ChangeGroupID: "cg1",
		Revision:      7,
		Content:       "after",
	}, nil)

	svc := version.NewService(repo, nil)
	pair, err := svc.Resolve(ctx, tenantID, version.ResolveRequest{
		PageID:          "P1",
		ChangeGroupID:   "cg1",
		ActivityContent: "before",
	})
	require.NoError(t, err)
	require.NotNil(t, pair)
	require.Equal(t, "before", pair.BeforeContent)
	require.Equal(t, "after", pair.AfterContent)
	require.Equal(t, int64(6), pair.BeforeRevision)
	require.Equal(t, int64(7), pair.AfterRevision)
}

func TestVersionService_Resolve_FirstRevisionClampsBefore(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.VersionRepository{}
	repo.On("FindLatest", ctx, "tenant1", "P1", "cg1").Return(&version.Version{
		PageID: "P1", ChangeGroupID: "cg1", Revision: 0, Content: "x",
	}, nil)

	pair, err := version.NewService(repo, nil).Resolve(ctx, "tenant1", version.ResolveRequest{PageID: "P1", ChangeGroupID: "cg1"})
	require.NoError(t, err)
	require.Equal(t, int64(0), pair.BeforeRevision)
}

func TestVersionService_Resolve_MissingIsNotAnError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.VersionRepository{}
	repo.On("FindLatest", ctx, "tenant1", "P1", "gone").Return(nil, repository.ErrNotFound)

	pair, err := version.NewService(repo, nil).Resolve(ctx, "tenant1", version.ResolveRequest{PageID: "P1", ChangeGroupID: "gone"})
	require.NoError(t, err)
	require.Nil(t, pair)
}

func TestVersionService_Resolve_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	repo := &mocks.VersionRepository{}
	repo.On("FindLatest", ctx, "tenant1", "P1", "cg1").Return(nil, boom)

	_, err := version.NewService(repo, nil).Resolve(ctx, "tenant1", version.ResolveRequest{PageID: "P1", ChangeGroupID: "cg1"})
	require.ErrorIs(t, err, boom)
}

func TestVersionService_ResolveBatch_ScopesByPage(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	repo := &mocks.VersionRepository{}
	repo.On("FindByPageChangeGroups", ctx, tenantID, []version.PageChangeGroup{
		{PageID: "A", ChangeGroupID: "shared"},
		{PageID: "B", ChangeGroupID: "shared"},
	}).Return([]version.Version{
		{PageID: "B", ChangeGroupID: "shared", Revision: 3, Content: "B content"},
		{PageID: "A", ChangeGroupID: "shared", Revision: 2, Content: "A content"},
		{PageID: "A", ChangeGroupID: "shared", Revision: 1, Content: "A stale"},
	}, nil).Once()

	svc := version.NewService(repo, nil)
	pairs, err := svc.ResolveBatch(ctx, tenantID, []version.ResolveRequest{
		{PageID: "A", ChangeGroupID: "shared", ActivityContent: "A before"},
		{PageID: "B", ChangeGroupID: "shared", ActivityContent: "B before"},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	a := pairs[version.Key("A", "shared")]
	require.Equal(t, "A before", a.BeforeContent)
	require.Equal(t, "A content", a.AfterContent)
	require.Equal(t, int64(2), a.AfterRevision)

	b := pairs[version.Key("B", "shared")]
	require.Equal(t, "B before", b.BeforeContent)
	require.Equal(t, "B content", b.AfterContent)
	repo.AssertNumberOfCalls(t, "FindByPageChangeGroups", 1)
}

func TestVersionService_ResolveBatch_OmitsMissesAndStrays(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.VersionRepository{}
	repo.On("FindByPageChangeGroups", ctx, "tenant1", mock.Anything).Return([]version.Version{
		{PageID: "A", ChangeGroupID: "cg1", Revision: 1, Content: "A"},
		{PageID: "C", ChangeGroupID: "cg1", Revision: 9, Content: "unrequested"},
	}, nil)

	pairs, err := version.NewService(repo, nil).ResolveBatch(ctx, "tenant1", []version.ResolveRequest{
		{PageID: "A", ChangeGroupID: "cg1"},
		{PageID: "B", ChangeGroupID: "cg2"},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Contains(t, pairs, "A:cg1")
	require.NotContains(t, pairs, "B:cg2")
	require.NotContains(t, pairs, "C:cg1")
}

func TestVersionService_ResolveBatch_EmptyIssuesNoQuery(t *testing.T) {
	repo := &mocks.VersionRepository{}
	pairs, err := version.NewService(repo, nil).ResolveBatch(context.Background(), "tenant1", nil)
	require.NoError(t, err)
	require.Empty(t, pairs)
	repo.AssertNotCalled(t, "FindByPageChangeGroups", mock.Anything, mock.Anything, mock.Anything)
}

func TestVersionService_Record(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.VersionRepository{}
	repo.On("Create", ctx, "tenant1", mock.Anything).Return(nil)

	svc := version.NewService(repo, nil)
	v := &version.Version{PageID: "P1", ChangeGroupID: "cg1", Revision: 1, Content: "x"}
	require.NoError(t, svc.Record(ctx, "tenant1", v))
	require.NotEmpty(t, v.ID)
	require.ErrorIs(t, svc.Record(ctx, "tenant1", &version.Version{PageID: "P1"}), version.ErrInvalidInput)
}

func TestKey_EscapesSeparator(t *testing.T) {
	require.Equal(t, "P1:cg1", version.Key("P1", "cg1"))
	require.NotEqual(t, version.Key("a:b", "c"), version.Key("a", "b:c"))
	require.NotEqual(t, version.Key(`a\`, "b"), version.Key("a", `\b`))
}

func TestVersionService_ResolveBatch_ColonInIdsStaysScoped(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.VersionRepository{}
	repo.On("FindByPageChangeGroups", ctx, "tenant1", []version.PageChangeGroup{
		{PageID: "a:b", ChangeGroupID: "c"},
		{PageID: "a", ChangeGroupID: "b:c"},
	}).Return([]version.Version{
		{PageID: "a", ChangeGroupID: "b:c", Revision: 2, Content: "page a"},
		{PageID: "a:b", ChangeGroupID: "c", Revision: 5, Content: "page a:b"},
	}, nil)

	pairs, err := version.NewService(repo, nil).ResolveBatch(ctx, "tenant1", []version.ResolveRequest{
		{PageID: "a:b", ChangeGroupID: "c", ActivityContent: "x"},
		{PageID: "a", ChangeGroupID: "b:c", ActivityContent: "y"},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	ab := pairs[version.Key("a:b", "c")]
	require.Equal(t, "a:b", ab.PageID)
	require.Equal(t, "x", ab.BeforeContent)
	require.Equal(t, "page a:b", ab.AfterContent)

	a := pairs[version.Key("a", "b:c")]
	require.Equal(t, "a", a.PageID)
	require.Equal(t, "y", a.BeforeContent)
	require.Equal(t, "page a", a.AfterContent)
}
