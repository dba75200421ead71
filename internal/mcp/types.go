package mcp

import (
	"github.com/rpggio/stackdiff/internal/diff"
)

type GetActivityDiffsParams struct {
	DriveID       string `json:"drive_id" jsonschema:"Drive whose activity is summarized"`
	PageID        string `json:"page_id,omitempty" jsonschema:"Restrict to one page"`
	Since         string `json:"since,omitempty" jsonschema:"RFC 3339 timestamp; only activity at or after it is read"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum activity entries to read"`
	OutputCeiling int    `json:"output_ceiling,omitempty" jsonschema:"Overall output size in characters; the diff budget is derived from it"`
	Total         int    `json:"total,omitempty" jsonschema:"Explicit total diff budget in characters; overrides output_ceiling"`
	PerItem       int    `json:"per_item,omitempty" jsonschema:"Explicit per-diff budget in characters"`
	MinUseful     int    `json:"min_useful,omitempty" jsonschema:"Smallest per-diff allowance worth emitting"`
}

type DiffContentParams struct {
	Old      string `json:"old" jsonschema:"Original content"`
	New      string `json:"new" jsonschema:"Updated content"`
	OldLabel string `json:"old_label,omitempty" jsonschema:"Label for the --- header line"`
	NewLabel string `json:"new_label,omitempty" jsonschema:"Label for the +++ header line"`
}

type DiffContentResult struct {
	Format      diff.Format `json:"format"`
	IsIdentical bool        `json:"is_identical"`
	Stats       diff.Stats  `json:"stats"`
	Summary     string      `json:"summary"`
	Spans       []diff.Span `json:"spans,omitempty"`
	UnifiedDiff string      `json:"unified_diff"`
}

type ApplyPatchParams struct {
	Base  string `json:"base" jsonschema:"Content to patch"`
	Patch string `json:"patch" jsonschema:"Patch text, with or without the ---/+++ header lines"`
}

type StructuralDiffParams struct {
	Old string `json:"old" jsonschema:"Original structured document JSON"`
	New string `json:"new" jsonschema:"Updated structured document JSON"`
}

type StructuralDiffResult struct {
	Changes []diff.NodeChange `json:"changes"`
}

type ExtractSectionsParams struct {
	Content string `json:"content" jsonschema:"Content to split into sections"`
}

type ExtractSectionsResult struct {
	Sections []diff.Section `json:"sections"`
}
