package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// PatchResult is the outcome of applying a patch.
type PatchResult struct {
	Content string `json:"content"`
	Success bool   `json:"success"`
}

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// UnifiedDiff returns a patch from oldContent to newContent with
// "--- oldLabel" and "+++ newLabel" headers. Identical contents produce
// the headers alone.
func (d *Differ) UnifiedDiff(oldContent, newContent, oldLabel, newLabel string) string {
	if oldContent == newContent {
		return header(oldLabel, newLabel)
	}

	dmp := d.engine()
	diffs := d.compute(dmp, oldContent, newContent)
	return header(oldLabel, newLabel) + patchText(dmp, oldContent, newContent, diffs)
}

// patchText serializes diffs as patch hunks. Content the patch engine
// cannot handle falls back to a raw whole-content hunk.
func patchText(dmp *diffmatchpatch.DiffMatchPatch, oldContent, newContent string, diffs []diffmatchpatch.Diff) (text string) {
	if !validText(oldContent, newContent) {
		return rawHunk(oldContent, newContent)
	}
	defer func() {
		if r := recover(); r != nil {
			text = rawHunk(oldContent, newContent)
		}
	}()
	return dmp.PatchToText(dmp.PatchMake(oldContent, diffs))
}

func header(oldLabel, newLabel string) string {
	return "--- " + oldLabel + "\n+++ " + newLabel + "\n"
}

// ApplyPatch applies patch text to base. The "---"/"+++" header lines are
// optional. Hunks are located with fuzzy context matching, so a base that
// drifted slightly from the original still patches. Success is true only
// when every hunk applied; a patch that fails to parse returns base
// unchanged.
func (d *Differ) ApplyPatch(base, patch string) (result PatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = PatchResult{Content: base, Success: false}
		}
	}()

	body := stripHeaders(patch)
	if strings.HasPrefix(body, rawHunkHeader) {
		return applyRawHunk(base, body)
	}

	dmp := d.engine()
	patches, err := dmp.PatchFromText(body)
	if err != nil {
		return PatchResult{Content: base, Success: false}
	}

	content, applied := dmp.PatchApply(patches, base)
	for _, ok := range applied {
		if !ok {
			return PatchResult{Content: content, Success: false}
		}
	}
	return PatchResult{Content: content, Success: true}
}

func stripHeaders(patch string) string {
	if !strings.HasPrefix(patch, "--- ") {
		return patch
	}
	first := strings.IndexByte(patch, '\n')
	if first < 0 {
		return ""
	}
	rest := patch[first+1:]
	if !strings.HasPrefix(rest, "+++ ") {
		return rest
	}
	second := strings.IndexByte(rest, '\n')
	if second < 0 {
		return ""
	}
	return rest[second+1:]
}
