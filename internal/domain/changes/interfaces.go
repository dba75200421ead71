package changes

import (
	"context"

	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/version"
)

// ActivitySource lists activity entries.
type ActivitySource interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// VersionResolver resolves change groups to content pairs in one batch.
type VersionResolver interface {
	ResolveBatch(ctx context.Context, tenantID string, reqs []version.ResolveRequest) (map[string]version.ContentPair, error)
}
