package budget

import (
	"math"
	"strings"
)

// DefaultMinUseful is the smallest per-item allowance worth emitting a
// diff for.
const DefaultMinUseful = 200

// DefaultMaxContentBytes is the size above which either side of a pair is
// not diffed at all.
const DefaultMaxContentBytes = 50 * 1024

const (
	// TruncationMarker ends a diff that was cut to fit its allowance.
	TruncationMarker = "... [diff truncated]"
	// OversizedMarker replaces the patch of a pair too large to diff.
	OversizedMarker = "[content too large to diff]"
)

// DiffBudget bounds the diff text emitted for one request. All sizes are
// in bytes of unified diff text.
type DiffBudget struct {
	Total     int `json:"total" yaml:"total"`
	PerItem   int `json:"per_item" yaml:"per_item"`
	MinUseful int `json:"min_useful" yaml:"min_useful"`
}

// DeriveBudget splits a single output ceiling into a diff budget, leaving
// room for the metadata that accompanies each diff.
func DeriveBudget(ceiling int) DiffBudget {
	if ceiling < 0 {
		ceiling = 0
	}
	return DiffBudget{
		Total:     ceiling * 40 / 100,
		PerItem:   ceiling * 10 / 100,
		MinUseful: DefaultMinUseful,
	}
}

// minAllowance is the smallest allowance that can hold the truncation
// marker line.
const minAllowance = len(TruncationMarker) + 1

func (b DiffBudget) withDefaults() DiffBudget {
	if b.MinUseful <= 0 {
		b.MinUseful = DefaultMinUseful
	}
	if b.MinUseful < minAllowance {
		b.MinUseful = minAllowance
	}
	return b
}

// Magnitude scores how significant a change is. Pure additions and
// deletions score the size of the non-empty side. Modifications score the
// size delta plus the square root of the mean size, so an edit to a large
// page outranks an equal-length edit to a tiny one.
func Magnitude(before, after string) float64 {
	lb, la := len(before), len(after)
	switch {
	case lb == 0 && la == 0:
		return 0
	case lb == 0:
		return float64(la)
	case la == 0:
		return float64(lb)
	}
	return math.Abs(float64(la-lb)) + math.Sqrt(float64(lb+la)/2)
}

// Truncate cuts text to at most ceiling bytes. Whole lines are kept until
// the next one would not leave room for the marker line, then
// TruncationMarker is appended. Text that already fits is returned as is.
func Truncate(text string, ceiling int) (string, bool) {
	if len(text) <= ceiling {
		return text, false
	}
	if ceiling < minAllowance {
		return "", true
	}

	limit := ceiling - minAllowance
	var sb strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if sb.Len()+len(line) > limit {
			break
		}
		sb.WriteString(line)
	}
	sb.WriteString(TruncationMarker)
	return sb.String(), true
}
