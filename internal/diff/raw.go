package diff

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// rawHunkHeader opens a whole-content replacement hunk. It is used when
// either side is not valid UTF-8, which the character diff cannot
// represent. Both sides are base64 encoded so any byte sequence survives.
const rawHunkHeader = "@@ raw @@\n"

func validText(oldContent, newContent string) bool {
	return utf8.ValidString(oldContent) && utf8.ValidString(newContent)
}

// replaceDiffs describes old -> new as one removal and one addition.
func replaceDiffs(oldContent, newContent string) []diffmatchpatch.Diff {
	var diffs []diffmatchpatch.Diff
	if oldContent != "" {
		diffs = append(diffs, diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: oldContent})
	}
	if newContent != "" {
		diffs = append(diffs, diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: newContent})
	}
	return diffs
}

func rawHunk(oldContent, newContent string) string {
	return rawHunkHeader +
		"-" + base64.StdEncoding.EncodeToString([]byte(oldContent)) + "\n" +
		"+" + base64.StdEncoding.EncodeToString([]byte(newContent)) + "\n"
}

// applyRawHunk replays a raw hunk. It only applies to the exact content
// it was made from.
func applyRawHunk(base, body string) PatchResult {
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(body, rawHunkHeader), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "-") || !strings.HasPrefix(lines[1], "+") {
		return PatchResult{Content: base, Success: false}
	}
	oldContent, err := base64.StdEncoding.DecodeString(lines[0][1:])
	if err != nil {
		return PatchResult{Content: base, Success: false}
	}
	newContent, err := base64.StdEncoding.DecodeString(lines[1][1:])
	if err != nil || string(oldContent) != base {
		return PatchResult{Content: base, Success: false}
	}
	return PatchResult{Content: string(newContent), Success: true}
}
