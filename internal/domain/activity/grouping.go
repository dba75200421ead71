package activity

import (
	"fmt"
	"sort"
	"strings"
)

// keyEscaper keeps composite keys unambiguous when ids contain ':'.
var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

// GroupKey returns the editing-session key for an entry. An AI conversation
// takes priority over a change group so that a multi-turn AI session
// collapses into one group per page. Entries with neither are their own group.
func GroupKey(entry ActivityEntry) string {
	if entry.PageID != nil {
		if entry.AIConversationID != nil && *entry.AIConversationID != "" {
			return fmt.Sprintf("ai:%s:%s", keyEscaper.Replace(*entry.PageID), keyEscaper.Replace(*entry.AIConversationID))
		}
		if entry.ChangeGroupID != nil && *entry.ChangeGroupID != "" {
			return fmt.Sprintf("cg:%s:%s", keyEscaper.Replace(*entry.PageID), keyEscaper.Replace(*entry.ChangeGroupID))
		}
	}
	return "single:" + entry.ID
}

// GroupActivities collapses entries into editing-session groups.
// Entries without a page cannot be diffed and are dropped. Groups are
// returned in order of their first (oldest) entry.
func GroupActivities(entries []ActivityEntry) []DiffGroup {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.PageID == nil {
			continue
		}
		sorted = append(sorted, entry)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	index := make(map[string]int)
	var groups []DiffGroup
	for _, entry := range sorted {
		key := GroupKey(entry)
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, DiffGroup{Key: key, First: entry})
			i = len(groups) - 1
		}
		groups[i].Activities = append(groups[i].Activities, entry)
		groups[i].Last = entry
	}
	return groups
}

// CollapsedCount returns the number of entries folded into the group.
func (g DiffGroup) CollapsedCount() int {
	return len(g.Activities)
}

// PageID returns the page the group belongs to.
func (g DiffGroup) PageID() string {
	if g.Last.PageID == nil {
		return ""
	}
	return *g.Last.PageID
}

// ChangeGroupID returns the change group of the newest entry, which
// identifies the version holding the group's final content.
func (g DiffGroup) ChangeGroupID() string {
	for i := len(g.Activities) - 1; i >= 0; i-- {
		if cg := g.Activities[i].ChangeGroupID; cg != nil && *cg != "" {
			return *cg
		}
	}
	return ""
}

// AIConversationID returns the conversation shared by the group, if any.
func (g DiffGroup) AIConversationID() string {
	if g.Last.AIConversationID == nil {
		return ""
	}
	return *g.Last.AIConversationID
}

// Actors returns the distinct actor names in the group, sorted.
func (g DiffGroup) Actors() []string {
	seen := make(map[string]struct{})
	actors := []string{}
	for _, entry := range g.Activities {
		name := entry.ActorName
		if name == "" {
			name = entry.ActorID
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		actors = append(actors, name)
	}
	sort.Strings(actors)
	return actors
}

// IsAIGenerated reports whether any entry in the group was AI generated.
func (g DiffGroup) IsAIGenerated() bool {
	for _, entry := range g.Activities {
		if entry.IsAIGenerated {
			return true
		}
	}
	return false
}

// TimeRange returns the span between the first and last entries.
func (g DiffGroup) TimeRange() TimeRange {
	return TimeRange{From: g.First.CreatedAt, To: g.Last.CreatedAt}
}

// BeforeContent returns the pre-update snapshot of the oldest entry,
// or the empty string when none was captured.
func (g DiffGroup) BeforeContent() string {
	if g.First.Content == nil {
		return ""
	}
	return *g.First.Content
}
