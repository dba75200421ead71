package activity_test

import (
	"testing"
	"time"

	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func entryAt(id string, minutes int, pageID, changeGroupID, conversationID *string) activity.ActivityEntry {
	return activity.ActivityEntry{
		ID:               id,
		DriveID:          "drive1",
		PageID:           pageID,
		ChangeGroupID:    changeGroupID,
		AIConversationID: conversationID,
		ActivityType:     activity.TypePageUpdated,
		ActorName:        "alice",
		CreatedAt:        base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestGroupActivities_Empty(t *testing.T) {
	require.Empty(t, activity.GroupActivities(nil))
	require.Empty(t, activity.GroupActivities([]activity.ActivityEntry{}))
}

func TestGroupActivities_CollapsesChangeGroup(t *testing.T) {
	p1, cg1 := strPtr("P1"), strPtr("cg1")
	first := entryAt("a1", 0, p1, cg1, nil)
	first.Content = strPtr("foo")
	mid := entryAt("a2", 1, p1, cg1, nil)
	mid.Content = strPtr("foob")
	last := entryAt("a3", 2, p1, cg1, nil)
	last.Content = strPtr("foobar")

	// Out of order on purpose; grouping must sort by timestamp.
	groups := activity.GroupActivities([]activity.ActivityEntry{last, first, mid})
	require.Len(t, groups, 1)

	g := groups[0]
	require.Equal(t, "cg:P1:cg1", g.Key)
	require.Equal(t, 3, g.CollapsedCount())
	require.Equal(t, "a1", g.First.ID)
	require.Equal(t, "a3", g.Last.ID)
	require.Equal(t, "foo", g.BeforeContent())
	require.Equal(t, []string{"a1", "a2", "a3"}, []string{g.Activities[0].ID, g.Activities[1].ID, g.Activities[2].ID})
	require.Equal(t, activity.TimeRange{From: first.CreatedAt, To: last.CreatedAt}, g.TimeRange())
}

func TestGroupActivities_SameChangeGroupDifferentPagesNeverMerge(t *testing.T) {
	shared := strPtr("shared")
	groups := activity.GroupActivities([]activity.ActivityEntry{
		entryAt("a1", 0, strPtr("A"), shared, nil),
		entryAt("a2", 1, strPtr("B"), shared, nil),
		entryAt("a3", 2, strPtr("A"), shared, nil),
	})
	require.Len(t, groups, 2)
	require.Equal(t, "cg:A:shared", groups[0].Key)
	require.Equal(t, 2, groups[0].CollapsedCount())
	require.Equal(t, "cg:B:shared", groups[1].Key)
	require.Equal(t, 1, groups[1].CollapsedCount())
}

func TestGroupActivities_ConversationTakesPriority(t *testing.T) {
	p1, conv := strPtr("P1"), strPtr("conv1")
	groups := activity.GroupActivities([]activity.ActivityEntry{
		entryAt("a1", 0, p1, strPtr("cg1"), conv),
		entryAt("a2", 1, p1, strPtr("cg2"), conv),
		entryAt("a3", 2, p1, strPtr("cg3"), conv),
	})
	require.Len(t, groups, 1)
	require.Equal(t, "ai:P1:conv1", groups[0].Key)
	require.Equal(t, "cg3", groups[0].ChangeGroupID())
	require.Equal(t, "conv1", groups[0].AIConversationID())
}

func TestGroupActivities_SinglesAndMissingPage(t *testing.T) {
	p1 := strPtr("P1")
	groups := activity.GroupActivities([]activity.ActivityEntry{
		entryAt("a1", 0, p1, nil, nil),
		entryAt("a2", 1, p1, nil, nil),
		entryAt("a3", 2, nil, strPtr("cg1"), nil),
	})
	require.Len(t, groups, 2)
	require.Equal(t, "single:a1", groups[0].Key)
	require.Equal(t, "single:a2", groups[1].Key)
	require.Equal(t, "", groups[0].ChangeGroupID())
}

func TestDiffGroup_ActorsAndAIFlag(t *testing.T) {
	p1, cg1 := strPtr("P1"), strPtr("cg1")
	a := entryAt("a1", 0, p1, cg1, nil)
	a.ActorName = "bob"
	b := entryAt("a2", 1, p1, cg1, nil)
	b.ActorName = "alice"
	b.IsAIGenerated = true
	c := entryAt("a3", 2, p1, cg1, nil)
	c.ActorName = "bob"

	groups := activity.GroupActivities([]activity.ActivityEntry{a, b, c})
	require.Len(t, groups, 1)
	require.Equal(t, []string{"alice", "bob"}, groups[0].Actors())
	require.True(t, groups[0].IsAIGenerated())
}

func TestGroupActivities_ColonInIdsNeverMerges(t *testing.T) {
	groups := activity.GroupActivities([]activity.ActivityEntry{
		entryAt("a1", 0, strPtr("a:b"), strPtr("c"), nil),
		entryAt("a2", 1, strPtr("a"), strPtr("b:c"), nil),
	})
	require.Len(t, groups, 2)
	require.Equal(t, `cg:a\:b:c`, groups[0].Key)
	require.Equal(t, `cg:a:b\:c`, groups[1].Key)
}
