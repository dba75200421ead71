package diff

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// =============================================================================
// DIFF TYPES
// =============================================================================

// Op is the kind of a diff span.
type Op int

const (
	// OpEqual marks text present in both versions
	OpEqual Op = iota
	// OpAdd marks inserted text
	OpAdd
	// OpRemove marks deleted text
	OpRemove
)

// String returns the string representation of an op.
func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Span is a run of text with a single op.
type Span struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Stats holds character counts for a diff.
type Stats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Unchanged    int `json:"unchanged"`
	TotalChanges int `json:"total_changes"`
}

// Result is the outcome of comparing two contents.
type Result struct {
	Format      Format `json:"format"`
	Spans       []Span `json:"spans"`
	Stats       Stats  `json:"stats"`
	IsIdentical bool   `json:"is_identical"`
}

// Summary returns a one-line human summary of the result.
func (r *Result) Summary() string {
	return Summarize(r.Stats)
}

// =============================================================================
// DIFFER
// =============================================================================

const (
	// DefaultTimeout bounds a single diff computation.
	DefaultTimeout = time.Second
	// DefaultLineModeThreshold is the combined input length above which
	// diffs are computed line by line.
	DefaultLineModeThreshold = 10_000
)

// Options configures a Differ.
type Options struct {
	// Timeout is the wall-clock budget for one diff. When it expires the
	// best diff found so far is returned.
	Timeout time.Duration
	// LineModeThreshold switches to line mode when len(old)+len(new)
	// exceeds it.
	LineModeThreshold int
}

// Differ computes diffs and patches. It holds no mutable state and is
// safe for concurrent use.
type Differ struct {
	opts Options
}

// NewDiffer creates a Differ, filling zero options with defaults.
func NewDiffer(opts Options) *Differ {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LineModeThreshold <= 0 {
		opts.LineModeThreshold = DefaultLineModeThreshold
	}
	return &Differ{opts: opts}
}

// Options returns the effective options.
func (d *Differ) Options() Options {
	return d.opts
}

func (d *Differ) engine() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = d.opts.Timeout
	return dmp
}

// compute runs the diff and the semantic cleanup pass.
func (d *Differ) compute(dmp *diffmatchpatch.DiffMatchPatch, oldContent, newContent string) []diffmatchpatch.Diff {
	if oldContent == newContent {
		if oldContent == "" {
			return nil
		}
		return []diffmatchpatch.Diff{{Type: diffmatchpatch.DiffEqual, Text: oldContent}}
	}

	if !validText(oldContent, newContent) {
		return replaceDiffs(oldContent, newContent)
	}

	var diffs []diffmatchpatch.Diff
	if len(oldContent)+len(newContent) > d.opts.LineModeThreshold {
		// Each distinct line becomes one token, so cost no longer depends
		// on line length.
		oldTokens, newTokens, lines := dmp.DiffLinesToChars(oldContent, newContent)
		diffs = dmp.DiffMain(oldTokens, newTokens, false)
		diffs = dmp.DiffCharsToLines(diffs, lines)
	} else {
		diffs = dmp.DiffMain(oldContent, newContent, false)
	}
	return dmp.DiffCleanupSemantic(diffs)
}

// DiffContent compares two contents.
func (d *Differ) DiffContent(oldContent, newContent string) *Result {
	if oldContent == newContent {
		return newResult(oldContent, newContent, nil)
	}
	return newResult(oldContent, newContent, d.compute(d.engine(), oldContent, newContent))
}

// Compare computes the diff once and returns both the span result and the
// unified patch text.
func (d *Differ) Compare(oldContent, newContent, oldLabel, newLabel string) (*Result, string) {
	if oldContent == newContent {
		return newResult(oldContent, newContent, nil), header(oldLabel, newLabel)
	}

	dmp := d.engine()
	diffs := d.compute(dmp, oldContent, newContent)
	result := newResult(oldContent, newContent, diffs)
	return result, header(oldLabel, newLabel) + patchText(dmp, oldContent, newContent, diffs)
}

func newResult(oldContent, newContent string, diffs []diffmatchpatch.Diff) *Result {
	result := &Result{
		Format:      DetectFormat(oldContent, newContent),
		Spans:       []Span{},
		IsIdentical: oldContent == newContent,
	}
	if result.IsIdentical {
		return result
	}

	for _, df := range diffs {
		n := utf8.RuneCountInString(df.Text)
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			result.Spans = append(result.Spans, Span{Op: OpAdd, Text: df.Text})
			result.Stats.Additions += n
		case diffmatchpatch.DiffDelete:
			result.Spans = append(result.Spans, Span{Op: OpRemove, Text: df.Text})
			result.Stats.Deletions += n
		case diffmatchpatch.DiffEqual:
			result.Spans = append(result.Spans, Span{Op: OpEqual, Text: df.Text})
			result.Stats.Unchanged += n
		}
	}
	result.Stats.TotalChanges = result.Stats.Additions + result.Stats.Deletions

	return result
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summarize returns a human-readable summary of the stats.
func Summarize(s Stats) string {
	if s.TotalChanges == 0 {
		return "No changes detected"
	}
	if s.Unchanged == 0 && s.Deletions == 0 {
		return fmt.Sprintf("New content: +%d characters", s.Additions)
	}
	if s.Unchanged == 0 && s.Additions == 0 {
		return fmt.Sprintf("Content removed: -%d characters", s.Deletions)
	}

	pct := float64(s.TotalChanges) / float64(s.TotalChanges+s.Unchanged) * 100
	share := fmt.Sprintf("%.0f%%", pct)
	if pct < 1 {
		share = "<1%"
	}
	return fmt.Sprintf("Modified %s of content: +%d -%d characters", share, s.Additions, s.Deletions)
}
