package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/rpggio/stackdiff/internal/repository"
)

// VersionRepository implements version.Repository for SQLite
type VersionRepository struct {
	db *DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create stores a version. A second version with the same page revision is
// a conflict.
func (r *VersionRepository) Create(ctx context.Context, tenantID string, v *version.Version) error {
	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	query := `
		INSERT INTO page_versions (
			id, tenant_id, page_id, change_group_id, revision, content, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		tenantID,
		v.PageID,
		v.ChangeGroupID,
		v.Revision,
		v.Content,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create version: %w", err)
	}

	v.TenantID = tenantID
	v.CreatedAt = createdAt

	return nil
}

// FindLatest returns the highest revision written by a change group on a
// page.
func (r *VersionRepository) FindLatest(ctx context.Context, tenantID, pageID, changeGroupID string) (*version.Version, error) {
	query := `
		SELECT id, tenant_id, page_id, change_group_id, revision, content, created_at
		FROM page_versions
		WHERE tenant_id = ? AND page_id = ? AND change_group_id = ?
		ORDER BY revision DESC
		LIMIT 1
	`

	var v version.Version
	err := r.db.QueryRowContext(ctx, query, tenantID, pageID, changeGroupID).Scan(
		&v.ID,
		&v.TenantID,
		&v.PageID,
		&v.ChangeGroupID,
		&v.Revision,
		&v.Content,
		&v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find version: %w", err)
	}

	return &v, nil
}

// maxPairsPerQuery keeps the bound variables of one batch lookup under
// SQLite's default limit of 32766.
const maxPairsPerQuery = 16_000

// FindByPageChangeGroups returns every version matching any of the
// (page, change group) pairs. Each pair is matched as a row value, so a
// change group id shared by two pages never crosses over. Batches up to
// maxPairsPerQuery pairs take a single query.
func (r *VersionRepository) FindByPageChangeGroups(ctx context.Context, tenantID string, pairs []version.PageChangeGroup) ([]version.Version, error) {
	var versions []version.Version
	for start := 0; start < len(pairs); start += maxPairsPerQuery {
		end := min(start+maxPairsPerQuery, len(pairs))
		chunk, err := r.findPairs(ctx, tenantID, pairs[start:end])
		if err != nil {
			return nil, err
		}
		versions = append(versions, chunk...)
	}
	return versions, nil
}

func (r *VersionRepository) findPairs(ctx context.Context, tenantID string, pairs []version.PageChangeGroup) ([]version.Version, error) {
	args := make([]interface{}, 0, 1+2*len(pairs))
	args = append(args, tenantID)
	for _, p := range pairs {
		args = append(args, p.PageID, p.ChangeGroupID)
	}

	// A multi-row VALUES list does not nest, unlike a chain of ORs, so it
	// is not bound by SQLite's expression depth limit.
	values := strings.TrimSuffix(strings.Repeat("(?, ?),", len(pairs)), ",")
	query := `
		SELECT id, tenant_id, page_id, change_group_id, revision, content, created_at
		FROM page_versions
		WHERE tenant_id = ? AND (page_id, change_group_id) IN (VALUES ` + values + `)
		ORDER BY revision DESC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find versions: %w", err)
	}
	defer rows.Close()

	var versions []version.Version
	for rows.Next() {
		var v version.Version
		if err := rows.Scan(
			&v.ID,
			&v.TenantID,
			&v.PageID,
			&v.ChangeGroupID,
			&v.Revision,
			&v.Content,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating version rows: %w", err)
	}

	return versions, nil
}
