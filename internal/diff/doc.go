// Package diff computes, serializes and applies content diffs.
//
// Diffs are computed with the diff-match-patch algorithm
// (github.com/sergi/go-diff): a character diff followed by a semantic
// cleanup pass, switching to line mode for large inputs. Output is a
// patch text prefixed with unified-style headers:
//
//	--- before
//	+++ after
//	@@ -1,4 +1,4 @@
//	 a%0A
//	-b
//	+c
//	 %0A
//
// Any text produced by UnifiedDiff applies cleanly with ApplyPatch against
// the content it was generated from.
//
// # Key Types
//
//   - Format: detected content format (plain, markup, document, json)
//   - Differ: diff engine with timeout and line-mode settings
//   - Result: spans and character stats for one comparison
//   - NodeChange: one entry of a shallow structural diff
//   - Section: an addressable chunk of content
package diff
