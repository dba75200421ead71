package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/stackdiff/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	query := `
		INSERT INTO activity_log (
			id, tenant_id, drive_id, page_id, change_group_id, ai_conversation_id,
			activity_type, content, actor_id, actor_name, resource_title,
			is_ai_generated, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		tenantID,
		entry.DriveID,
		entry.PageID,
		entry.ChangeGroupID,
		entry.AIConversationID,
		entry.ActivityType,
		entry.Content,
		entry.ActorID,
		entry.ActorName,
		entry.ResourceTitle,
		entry.IsAIGenerated,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	entry.TenantID = tenantID
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	query := `
		SELECT
			id, tenant_id, drive_id, page_id, change_group_id, ai_conversation_id,
			activity_type, content, actor_id, actor_name, resource_title,
			is_ai_generated, created_at
		FROM activity_log
		WHERE tenant_id = ?
	`

	args := []interface{}{tenantID}
	conditions := []string{}

	if opts.DriveID != "" {
		conditions = append(conditions, "drive_id = ?")
		args = append(args, opts.DriveID)
	}
	if opts.PageID != nil {
		conditions = append(conditions, "page_id = ?")
		args = append(args, *opts.PageID)
	}
	if opts.ChangeGroupID != nil {
		conditions = append(conditions, "change_group_id = ?")
		args = append(args, *opts.ChangeGroupID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}
	if !opts.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var entry activity.ActivityEntry
		var pageID, changeGroupID, conversationID, content sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.DriveID,
			&pageID,
			&changeGroupID,
			&conversationID,
			&entry.ActivityType,
			&content,
			&entry.ActorID,
			&entry.ActorName,
			&entry.ResourceTitle,
			&entry.IsAIGenerated,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.PageID = nullable(pageID)
		entry.ChangeGroupID = nullable(changeGroupID)
		entry.AIConversationID = nullable(conversationID)
		entry.Content = nullable(content)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
