package budget

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveBudget(t *testing.T) {
	require.Equal(t, DiffBudget{Total: 4000, PerItem: 1000, MinUseful: 200}, DeriveBudget(10000))
	require.Equal(t, DiffBudget{Total: 0, PerItem: 0, MinUseful: 200}, DeriveBudget(-5))
}

func TestMagnitude(t *testing.T) {
	require.Equal(t, float64(len("New content")), Magnitude("", "New content"))
	require.Equal(t, float64(len("Old content")), Magnitude("Old content", ""))
	require.Zero(t, Magnitude("", ""))

	// 8 -> 12 bytes: delta 4 plus sqrt(10)
	require.InDelta(t, 4+3.1623, Magnitude("12345678", "123456789012"), 0.001)

	tiny := Magnitude("ab", "ac")
	large := Magnitude(strings.Repeat("x", 1000)+"ab", strings.Repeat("x", 1000)+"ac")
	require.Greater(t, large, tiny)
}

func TestTruncate_FitsUnchanged(t *testing.T) {
	out, truncated := Truncate("short\ntext\n", 100)
	require.False(t, truncated)
	require.Equal(t, "short\ntext\n", out)
}

func TestTruncate_WholeLines(t *testing.T) {
	text := strings.Repeat("aaaaaaaaa\n", 5)

	out, truncated := Truncate(text, 45)
	require.True(t, truncated)
	require.Equal(t, "aaaaaaaaa\naaaaaaaaa\n"+TruncationMarker, out)
	require.LessOrEqual(t, len(out), 45)
}

func TestTruncate_LongFirstLine(t *testing.T) {
	out, truncated := Truncate(strings.Repeat("z", 500)+"\nrest", 100)
	require.True(t, truncated)
	require.Equal(t, TruncationMarker, out)
}

func TestTruncate_CeilingBelowMarker(t *testing.T) {
	out, truncated := Truncate(strings.Repeat("z", 50), 10)
	require.True(t, truncated)
	require.Empty(t, out)
}

func TestTruncate_NeverEndsMidLine(t *testing.T) {
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("%s line %d", strings.Repeat("-", i%13), i))
	}
	text := strings.Join(lines, "\n")

	for ceiling := 21; ceiling < len(text); ceiling += 17 {
		out, truncated := Truncate(text, ceiling)
		require.True(t, truncated)
		require.LessOrEqual(t, len(out), ceiling)
		require.True(t, strings.HasSuffix(out, TruncationMarker))

		kept := strings.TrimSuffix(out, TruncationMarker)
		require.True(t, strings.HasPrefix(text, kept))
		if kept != "" {
			require.True(t, strings.HasSuffix(kept, "\n"), "ceiling %d", ceiling)
		}
	}
}
