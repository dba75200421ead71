package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `stackdiff turns page edit activity into a small set of budget-bounded diffs.

Core concepts:
- Activity: one logged content change on a page (autosaves produce many).
- Group: the activity of one editing session, keyed by AI conversation, else change group, else the entry itself.
- Stacked diff: one diff per group, from the content before the session to the final saved version.
- Budget: total and per-diff character allowances. Lower priority diffs are dropped, never half included.

Default workflow:
1) Call get_activity_diffs with a drive_id (optionally page_id, since, output_ceiling).
2) If omitted_for_budget > 0, call again with a larger output_ceiling or narrow by page_id/since.
3) Use diff_content / apply_patch to compare or replay specific contents.
4) Use structural_diff or extract_sections on structured documents to reason about individual blocks.

Docs:
- stackdiff://docs/index
- stackdiff://docs/diff-format
- stackdiff://docs/budgets
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "stackdiff://docs/index",
		Name:        "docs_index",
		Title:       "stackdiff docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read.",
		Content: `# stackdiff: Agent Docs Index

- ` + "`stackdiff://docs/diff-format`" + `: how to read unified_diff and stats.
- ` + "`stackdiff://docs/budgets`" + `: how output size is bounded and how to ask for more.

## Reading a summary

- ` + "`total_groups`" + `: editing sessions found in the activity window.
- ` + "`missing_versions`" + `: sessions whose final content is no longer stored. They are not errors.
- ` + "`identical`" + `: sessions that ended where they started.
- ` + "`omitted_for_budget`" + `: sessions dropped because the budget ran out.
- ` + "`diffs`" + `: the rest, most significant first.
`,
	},
	{
		URI:         "stackdiff://docs/diff-format",
		Name:        "docs_diff_format",
		Title:       "Diff format",
		Description: "How unified diffs, stats and truncation markers are encoded.",
		Content: `# Diff format

Every diff starts with two header lines:

    --- <page title> (before)
    +++ <page title> (after)

followed by hunks. Each hunk starts with ` + "`@@ -start,len +start,len @@`" + ` and lists
lines prefixed with a space (context), ` + "`-`" + ` (removed) or ` + "`+`" + ` (added). Hunk text is
character based and URL-escaped: a newline inside a hunk line is written ` + "`%0A`" + `.

The patch can be replayed with ` + "`apply_patch`" + `. Hunks are matched fuzzily, so content
that drifted slightly since the diff was taken still patches.

## Stats

` + "`additions`" + `, ` + "`deletions`" + ` and ` + "`unchanged`" + ` count characters.
` + "`summary`" + ` reports the share of characters touched.

## Markers

- ` + "`... [diff truncated]`" + `: the diff was cut at a line boundary to fit its allowance.
- ` + "`[content too large to diff]`" + `: one side exceeded the size limit; only stats are given.
`,
	},
	{
		URI:         "stackdiff://docs/budgets",
		Name:        "docs_budgets",
		Title:       "Budgets",
		Description: "How output size is derived and enforced.",
		Content: `# Budgets

` + "`output_ceiling`" + ` is the size you can afford for the whole answer. 40% of it goes to
diff text in total and 10% to any single diff; the rest is left for metadata.
Pass ` + "`total`" + ` and ` + "`per_item`" + ` to set the budget directly.

Diffs are ranked by size of change. A diff is emitted only if at least
` + "`min_useful`" + ` characters (default 200) remain for it; once that fails, every lower
ranked diff is dropped and counted in ` + "`omitted_for_budget`" + `.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
