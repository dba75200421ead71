package changes

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/rpggio/stackdiff/internal/budget"
	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/version"
)

const (
	// DefaultOutputCeiling is used when neither the request nor the
	// service options give one.
	DefaultOutputCeiling = 20_000
	// DefaultActivityLimit caps the entries read per request.
	DefaultActivityLimit = 500
	// MaxActivityLimit bounds any requested limit. Each entry can become
	// one (page, change group) lookup.
	MaxActivityLimit = 10_000
)

// Options configures a Service.
type Options struct {
	OutputCeiling int
	MinUseful     int
	ActivityLimit int
}

// Service turns recent activity into stacked diffs.
type Service struct {
	activities ActivitySource
	versions   VersionResolver
	allocator  *budget.Allocator
	opts       Options
	logger     *slog.Logger
}

// NewService creates a new changes service.
func NewService(activities ActivitySource, versions VersionResolver, allocator *budget.Allocator, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if allocator == nil {
		allocator = budget.NewAllocator(nil, logger, budget.Options{})
	}
	if opts.OutputCeiling <= 0 {
		opts.OutputCeiling = DefaultOutputCeiling
	}
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = DefaultActivityLimit
	}
	opts.ActivityLimit = min(opts.ActivityLimit, MaxActivityLimit)
	return &Service{
		activities: activities,
		versions:   versions,
		allocator:  allocator,
		opts:       opts,
		logger:     logger,
	}
}

// Budget returns the diff budget that applies to req. Fields an explicit
// budget leaves at zero come from the budget derived from the ceiling.
func (s *Service) Budget(req SummaryRequest) budget.DiffBudget {
	ceiling := req.OutputCeiling
	if ceiling <= 0 {
		ceiling = s.opts.OutputCeiling
	}
	b := budget.DeriveBudget(ceiling)
	if s.opts.MinUseful > 0 {
		b.MinUseful = s.opts.MinUseful
	}
	if req.Budget == nil {
		return b
	}

	explicit := *req.Budget
	if explicit.Total <= 0 {
		explicit.Total = b.Total
	}
	if explicit.PerItem <= 0 {
		explicit.PerItem = min(b.PerItem, explicit.Total)
	}
	if explicit.MinUseful <= 0 {
		explicit.MinUseful = b.MinUseful
	}
	return explicit
}

// Summarize groups recent activity, resolves every group's final content
// with one version lookup and returns the diffs that fit the budget.
func (s *Service) Summarize(ctx context.Context, tenantID string, req SummaryRequest) (*Summary, error) {
	reqs, summary, err := s.prepare(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	diffs, report := s.allocator.AllocateWithReport(reqs, summary.Budget)
	summary.Diffs = diffs
	summary.Identical = report.Identical
	summary.Truncated = report.Truncated
	summary.OmittedForBudget = report.DroppedForBudget

	s.logger.Info("summarized activity",
		"tenant_id", tenantID,
		"drive_id", req.DriveID,
		"groups", summary.TotalGroups,
		"diffs", len(diffs),
		"missing_versions", summary.MissingVersions,
		"omitted_for_budget", summary.OmittedForBudget)
	return summary, nil
}

// Stream is Summarize with lazy diff computation. The activity and
// version lookups happen before it returns; each diff is computed when the
// sequence is advanced.
func (s *Service) Stream(ctx context.Context, tenantID string, req SummaryRequest) (iter.Seq[budget.StackedDiff], error) {
	reqs, summary, err := s.prepare(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return s.allocator.Stream(ctx, reqs, summary.Budget), nil
}

func (s *Service) prepare(ctx context.Context, tenantID string, req SummaryRequest) ([]budget.DiffRequest, *Summary, error) {
	if strings.TrimSpace(req.DriveID) == "" {
		return nil, nil, ErrInvalidInput
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.ActivityLimit
	}
	limit = min(limit, MaxActivityLimit)
	entries, err := s.activities.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{
		DriveID: req.DriveID,
		PageID:  req.PageID,
		Since:   req.Since,
		Limit:   limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading activity: %w", err)
	}

	groups := activity.GroupActivities(entries)
	summary := &Summary{
		Diffs:       []budget.StackedDiff{},
		TotalGroups: len(groups),
		Budget:      s.Budget(req),
	}

	resolve := make([]version.ResolveRequest, 0, len(groups))
	for _, g := range groups {
		if cg := g.ChangeGroupID(); cg != "" {
			resolve = append(resolve, version.ResolveRequest{
				PageID:          g.PageID(),
				ChangeGroupID:   cg,
				ActivityContent: g.BeforeContent(),
			})
		}
	}

	pairs, err := s.versions.ResolveBatch(ctx, tenantID, resolve)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving versions: %w", err)
	}

	reqs := make([]budget.DiffRequest, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		cg := g.ChangeGroupID()
		pair, ok := pairs[version.Key(g.PageID(), cg)]
		if cg == "" || !ok || pair.PageID != g.PageID() || pair.ChangeGroupID != cg {
			summary.MissingVersions++
			continue
		}
		reqs = append(reqs, budget.DiffRequest{
			PageID:        g.PageID(),
			BeforeContent: g.BeforeContent(),
			AfterContent:  pair.AfterContent,
			Group:         g,
			DriveID:       g.Last.DriveID,
		})
	}

	s.logger.Debug("prepared diff candidates",
		"entries", len(entries), "groups", len(groups), "candidates", len(reqs))
	return reqs, summary, nil
}
