package activity

import "time"

// ActivityType represents the type of content-affecting event
type ActivityType string

const (
	TypePageCreated  ActivityType = "page_created"
	TypePageUpdated  ActivityType = "page_updated"
	TypePageDeleted  ActivityType = "page_deleted"
	TypePageRestored ActivityType = "page_restored"
	TypePageMoved    ActivityType = "page_moved"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case TypePageCreated, TypePageUpdated, TypePageDeleted, TypePageRestored, TypePageMoved:
		return true
	}
	return false
}

// ActivityEntry represents an event in the activity log.
// Content holds the pre-update snapshot when one was captured.
type ActivityEntry struct {
	ID               string       `json:"id"`
	TenantID         string       `json:"tenant_id"`
	DriveID          string       `json:"drive_id"`
	PageID           *string      `json:"page_id,omitempty"`
	ChangeGroupID    *string      `json:"change_group_id,omitempty"`
	AIConversationID *string      `json:"ai_conversation_id,omitempty"`
	ActivityType     ActivityType `json:"type"`
	Content          *string      `json:"content,omitempty"`
	ActorID          string       `json:"actor_id"`
	ActorName        string       `json:"actor_name"`
	ResourceTitle    string       `json:"resource_title"`
	IsAIGenerated    bool         `json:"is_ai_generated"`
	CreatedAt        time.Time    `json:"created_at"`
}

// DiffGroup collapses the activity of one editing session.
// First and Last are the chronologically oldest and newest entries.
type DiffGroup struct {
	Key        string          `json:"key"`
	First      ActivityEntry   `json:"first"`
	Last       ActivityEntry   `json:"last"`
	Activities []ActivityEntry `json:"activities"`
}

// TimeRange is an inclusive span of activity timestamps.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}
