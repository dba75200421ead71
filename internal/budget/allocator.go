package budget

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/rpggio/stackdiff/internal/diff"
	"github.com/rpggio/stackdiff/internal/domain/activity"
)

// DiffRequest is one candidate for allocation.
type DiffRequest struct {
	PageID        string
	BeforeContent string
	AfterContent  string
	Group         *activity.DiffGroup
	DriveID       string
	// Priority overrides the magnitude heuristic when set.
	Priority *float64
}

// StackedDiff is a finished, budget-bounded diff of one editing session.
type StackedDiff struct {
	DriveID          string             `json:"drive_id"`
	PageID           string             `json:"page_id"`
	PageTitle        string             `json:"page_title,omitempty"`
	ChangeGroupID    string             `json:"change_group_id,omitempty"`
	AIConversationID string             `json:"ai_conversation_id,omitempty"`
	CollapsedCount   int                `json:"collapsed_count"`
	TimeRange        activity.TimeRange `json:"time_range"`
	Actors           []string           `json:"actors"`
	UnifiedDiff      string             `json:"unified_diff"`
	Stats            diff.Stats         `json:"stats"`
	Summary          string             `json:"summary"`
	IsAIGenerated    bool               `json:"is_ai_generated"`
	Truncated        bool               `json:"truncated"`
}

// AllocationReport counts what happened to the candidates of one run.
// It lets callers tell "no changes" apart from "changes omitted for budget".
type AllocationReport struct {
	Candidates       int `json:"candidates"`
	Emitted          int `json:"emitted"`
	Truncated        int `json:"truncated"`
	Identical        int `json:"identical"`
	Oversized        int `json:"oversized"`
	DroppedForBudget int `json:"dropped_for_budget"`
	UsedBytes        int `json:"used_bytes"`
}

// Options configures an Allocator.
type Options struct {
	// MaxContentBytes is the largest side of a pair that is diffed in full.
	MaxContentBytes int
}

// Allocator prioritizes diff candidates and fits them into a budget.
// It keeps no state between calls.
type Allocator struct {
	differ          *diff.Differ
	logger          *slog.Logger
	maxContentBytes int
}

// NewAllocator creates a new allocator.
func NewAllocator(differ *diff.Differ, logger *slog.Logger, opts Options) *Allocator {
	if differ == nil {
		differ = diff.NewDiffer(diff.Options{})
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxContentBytes <= 0 {
		opts.MaxContentBytes = DefaultMaxContentBytes
	}
	return &Allocator{differ: differ, logger: logger, maxContentBytes: opts.MaxContentBytes}
}

// Allocate returns the prioritized, budget-bounded diffs for reqs.
func (a *Allocator) Allocate(reqs []DiffRequest, b DiffBudget) []StackedDiff {
	diffs, _ := a.AllocateWithReport(reqs, b)
	return diffs
}

// AllocateWithReport is Allocate plus a count of what was omitted and why.
func (a *Allocator) AllocateWithReport(reqs []DiffRequest, b DiffBudget) ([]StackedDiff, AllocationReport) {
	diffs := []StackedDiff{}
	report := a.run(context.Background(), reqs, b, func(sd StackedDiff) bool {
		diffs = append(diffs, sd)
		return true
	})
	return diffs, report
}

// Stream yields diffs one at a time in priority order. Each diff is only
// computed when the consumer asks for it; iteration ends when the budget
// is exhausted, the consumer stops, or ctx is done.
func (a *Allocator) Stream(ctx context.Context, reqs []DiffRequest, b DiffBudget) iter.Seq[StackedDiff] {
	return func(yield func(StackedDiff) bool) {
		a.run(ctx, reqs, b, yield)
	}
}

type candidate struct {
	req      DiffRequest
	priority float64
}

// prioritize orders requests by priority, highest first. Ties keep input
// order.
func prioritize(reqs []DiffRequest) []candidate {
	out := make([]candidate, len(reqs))
	for i, req := range reqs {
		p := Magnitude(req.BeforeContent, req.AfterContent)
		if req.Priority != nil {
			p = *req.Priority
		}
		out[i] = candidate{req: req, priority: p}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority > out[j].priority
	})
	return out
}

func (a *Allocator) run(ctx context.Context, reqs []DiffRequest, b DiffBudget, yield func(StackedDiff) bool) AllocationReport {
	b = b.withDefaults()
	ordered := prioritize(reqs)
	report := AllocationReport{Candidates: len(ordered)}

	for i, c := range ordered {
		if ctx.Err() != nil {
			a.logger.Debug("allocation cancelled", "emitted", report.Emitted, "remaining", len(ordered)-i)
			return report
		}
		if c.req.BeforeContent == c.req.AfterContent {
			report.Identical++
			continue
		}

		ceiling := min(b.PerItem, b.Total-report.UsedBytes)
		if ceiling <= 0 || ceiling < b.MinUseful {
			for _, rest := range ordered[i:] {
				if rest.req.BeforeContent == rest.req.AfterContent {
					report.Identical++
				} else {
					report.DroppedForBudget++
				}
			}
			diffsDroppedTotal.Add(float64(report.DroppedForBudget))
			a.logger.Debug("diff budget exhausted",
				"used", report.UsedBytes, "total", b.Total, "dropped", report.DroppedForBudget)
			return report
		}

		sd, oversized := a.generate(c.req, ceiling)
		report.Emitted++
		report.UsedBytes += len(sd.UnifiedDiff)
		diffsEmittedTotal.Inc()
		if sd.Truncated {
			report.Truncated++
			diffsTruncatedTotal.Inc()
		}
		if oversized {
			report.Oversized++
			diffsOversizedTotal.Inc()
		}

		if !yield(sd) {
			return report
		}
	}
	return report
}

// generate builds one stacked diff no longer than ceiling. The second
// return value reports whether the pair was too large to diff.
func (a *Allocator) generate(req DiffRequest, ceiling int) (StackedDiff, bool) {
	sd := newStackedDiff(req)
	before, after := req.BeforeContent, req.AfterContent

	var patch string
	oversized := len(before) > a.maxContentBytes || len(after) > a.maxContentBytes
	if oversized {
		if len(after) > len(before) {
			sd.Stats.Additions = len(after) - len(before)
		} else {
			sd.Stats.Deletions = len(before) - len(after)
		}
		sd.Stats.TotalChanges = sd.Stats.Additions + sd.Stats.Deletions
		sd.Summary = fmt.Sprintf("Content too large to diff: %d -> %d bytes", len(before), len(after))
		patch = OversizedMarker
		a.logger.Debug("skipping oversized pair", "page_id", req.PageID, "before_bytes", len(before), "after_bytes", len(after))
	} else {
		label := sd.PageTitle
		if label == "" {
			label = req.PageID
		}
		start := time.Now()
		var result *diff.Result
		result, patch = a.differ.Compare(before, after, label+" (before)", label+" (after)")
		diffDuration.Observe(time.Since(start).Seconds())
		sd.Stats = result.Stats
		sd.Summary = result.Summary()
	}

	sd.UnifiedDiff, sd.Truncated = Truncate(patch, ceiling)
	return sd, oversized
}

func newStackedDiff(req DiffRequest) StackedDiff {
	sd := StackedDiff{
		DriveID:        req.DriveID,
		PageID:         req.PageID,
		CollapsedCount: 1,
		Actors:         []string{},
	}
	if g := req.Group; g != nil {
		sd.PageTitle = g.Last.ResourceTitle
		sd.ChangeGroupID = g.ChangeGroupID()
		sd.AIConversationID = g.AIConversationID()
		sd.CollapsedCount = g.CollapsedCount()
		sd.TimeRange = g.TimeRange()
		sd.Actors = g.Actors()
		sd.IsAIGenerated = g.IsAIGenerated()
		if sd.DriveID == "" {
			sd.DriveID = g.Last.DriveID
		}
	}
	return sd
}
