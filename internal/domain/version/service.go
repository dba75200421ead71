package version

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/stackdiff/internal/repository"
)

// Service resolves change groups to before/after content pairs.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new version service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// Record stores a new version snapshot.
func (s *Service) Record(ctx context.Context, tenantID string, v *Version) error {
	if v == nil || strings.TrimSpace(v.PageID) == "" || strings.TrimSpace(v.ChangeGroupID) == "" || v.Revision < 0 {
		return ErrInvalidInput
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	if err := s.repo.Create(ctx, tenantID, v); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return nil
}

// Resolve returns the content pair for one change group. A nil pair with a
// nil error means the store holds no version for it, which is expected when
// version retention is shorter than activity retention.
func (s *Service) Resolve(ctx context.Context, tenantID string, req ResolveRequest) (*ContentPair, error) {
	if req.PageID == "" || req.ChangeGroupID == "" {
		return nil, ErrInvalidInput
	}

	v, err := s.repo.FindLatest(ctx, tenantID, req.PageID, req.ChangeGroupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("no version for change group", "page_id", req.PageID, "change_group_id", req.ChangeGroupID)
			return nil, nil
		}
		return nil, fmt.Errorf("resolving version: %w", err)
	}

	pair := newPair(req, *v)
	return &pair, nil
}

// ResolveBatch resolves many change groups with a single store query.
// The result is keyed by Key(pageID, changeGroupID); requests without a
// matching version are absent from the map.
func (s *Service) ResolveBatch(ctx context.Context, tenantID string, reqs []ResolveRequest) (map[string]ContentPair, error) {
	result := make(map[string]ContentPair)

	requested := make(map[PageChangeGroup]ResolveRequest, len(reqs))
	pairs := make([]PageChangeGroup, 0, len(reqs))
	for _, req := range reqs {
		if req.PageID == "" || req.ChangeGroupID == "" {
			continue
		}
		pcg := PageChangeGroup{PageID: req.PageID, ChangeGroupID: req.ChangeGroupID}
		if _, dup := requested[pcg]; dup {
			continue
		}
		requested[pcg] = req
		pairs = append(pairs, pcg)
	}
	if len(pairs) == 0 {
		return result, nil
	}

	versions, err := s.repo.FindByPageChangeGroups(ctx, tenantID, pairs)
	if err != nil {
		return nil, fmt.Errorf("resolving versions: %w", err)
	}

	latest := make(map[PageChangeGroup]Version, len(versions))
	for _, v := range versions {
		pcg := PageChangeGroup{PageID: v.PageID, ChangeGroupID: v.ChangeGroupID}
		if _, ok := requested[pcg]; !ok {
			continue
		}
		if cur, ok := latest[pcg]; !ok || v.Revision > cur.Revision {
			latest[pcg] = v
		}
	}

	for pcg, v := range latest {
		result[pcg.Key()] = newPair(requested[pcg], v)
	}

	s.logger.Debug("resolved versions", "requested", len(pairs), "resolved", len(result))
	return result, nil
}

func newPair(req ResolveRequest, v Version) ContentPair {
	before := v.Revision - 1
	if before < 0 {
		before = 0
	}
	return ContentPair{
		PageID:         v.PageID,
		ChangeGroupID:  v.ChangeGroupID,
		BeforeContent:  req.ActivityContent,
		AfterContent:   v.Content,
		BeforeRevision: before,
		AfterRevision:  v.Revision,
	}
}
