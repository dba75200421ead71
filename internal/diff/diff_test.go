package diff

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDiffContent_ReplacedWord(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("Hello world", "Hello there")
	require.False(t, r.IsIdentical)
	require.Equal(t, 5, r.Stats.Additions)
	require.Equal(t, 5, r.Stats.Deletions)
	require.Equal(t, 6, r.Stats.Unchanged)
	require.Equal(t, 10, r.Stats.TotalChanges)
	require.Equal(t, FormatPlain, r.Format)
	require.True(t, strings.HasPrefix(r.Summary(), "Modified "))
	require.Contains(t, r.Summary(), "+5 -5 characters")
}

func TestDiffContent_Identical(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("same text\nacross lines", "same text\nacross lines")
	require.True(t, r.IsIdentical)
	require.Equal(t, Stats{}, r.Stats)
	require.Empty(t, r.Spans)
	require.Equal(t, "No changes detected", r.Summary())
}

func TestDiffContent_PureAddition(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("", "New content")
	require.Equal(t, []Span{{Op: OpAdd, Text: "New content"}}, r.Spans)
	require.Equal(t, 11, r.Stats.Additions)
	require.Equal(t, "New content: +11 characters", r.Summary())
}

func TestDiffContent_PureDeletion(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("Old content", "")
	require.Equal(t, []Span{{Op: OpRemove, Text: "Old content"}}, r.Spans)
	require.Equal(t, "Content removed: -11 characters", r.Summary())
}

func TestDiffContent_CountsRunes(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("café", "café au lait")
	require.Equal(t, 8, r.Stats.Additions)
	require.Equal(t, 4, r.Stats.Unchanged)
}

func TestDiffContent_LineModeMatchesText(t *testing.T) {
	d := NewDiffer(Options{LineModeThreshold: 10})

	oldContent := "alpha\nbravo\ncharlie\ndelta\n"
	newContent := "alpha\nbravo changed\ncharlie\necho\n"
	r := d.DiffContent(oldContent, newContent)

	var before, after strings.Builder
	for _, s := range r.Spans {
		if s.Op != OpAdd {
			before.WriteString(s.Text)
		}
		if s.Op != OpRemove {
			after.WriteString(s.Text)
		}
	}
	require.Equal(t, oldContent, before.String())
	require.Equal(t, newContent, after.String())
}

func TestNewDiffer_Defaults(t *testing.T) {
	d := NewDiffer(Options{})
	require.Equal(t, time.Second, d.Options().Timeout)
	require.Equal(t, DefaultLineModeThreshold, d.Options().LineModeThreshold)
}

func TestSummarize_SmallShare(t *testing.T) {
	require.Equal(t, "Modified <1% of content: +1 -0 characters",
		Summarize(Stats{Additions: 1, Unchanged: 500, TotalChanges: 1}))
}

func TestCompare_MatchesSeparateCalls(t *testing.T) {
	d := NewDiffer(Options{})

	result, patch := d.Compare("foo", "foobar", "old", "new")
	require.Equal(t, d.DiffContent("foo", "foobar"), result)
	require.Equal(t, d.UnifiedDiff("foo", "foobar", "old", "new"), patch)
	require.Equal(t, []Span{{Op: OpEqual, Text: "foo"}, {Op: OpAdd, Text: "bar"}}, result.Spans)

	applied := d.ApplyPatch("foo", patch)
	require.True(t, applied.Success)
	require.Equal(t, "foobar", applied.Content)
}

func randomText(r *rand.Rand, n int) string {
	const alphabet = "abcdefghij      \n"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestDiffer_TimeoutReturnsUsablePartialDiff(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	oldContent := randomText(r, 9*1024)
	newContent := randomText(r, 9*1024)

	for _, opts := range []Options{
		{Timeout: time.Microsecond},
		{Timeout: time.Microsecond, LineModeThreshold: 1 << 20},
	} {
		d := NewDiffer(opts)

		start := time.Now()
		result, patch := d.Compare(oldContent, newContent, "old", "new")
		require.Less(t, time.Since(start), 5*time.Second)
		require.False(t, result.IsIdentical)

		var before, after strings.Builder
		for _, s := range result.Spans {
			if s.Op != OpAdd {
				before.WriteString(s.Text)
			}
			if s.Op != OpRemove {
				after.WriteString(s.Text)
			}
		}
		require.Equal(t, oldContent, before.String())
		require.Equal(t, newContent, after.String())

		applied := d.ApplyPatch(oldContent, patch)
		require.True(t, applied.Success)
		require.Equal(t, newContent, applied.Content)
	}
}

func TestDiffContent_InvalidUTF8IsWholeReplacement(t *testing.T) {
	d := NewDiffer(Options{})

	r := d.DiffContent("caf\xe9 au lait", "caf\xe9 noir")
	require.Equal(t, []Span{
		{Op: OpRemove, Text: "caf\xe9 au lait"},
		{Op: OpAdd, Text: "caf\xe9 noir"},
	}, r.Spans)
	require.Equal(t, 12, r.Stats.Deletions)
	require.Equal(t, 9, r.Stats.Additions)
}
