package changes

import (
	"time"

	"github.com/rpggio/stackdiff/internal/budget"
)

// SummaryRequest selects the activity to summarize and the size of the
// output.
type SummaryRequest struct {
	DriveID string
	PageID  *string
	Since   time.Time
	// Limit caps the number of activity entries read. Zero uses the
	// service default.
	Limit int
	// OutputCeiling is the caller's overall output size. The diff budget
	// is derived from it unless Budget is set.
	OutputCeiling int
	Budget        *budget.DiffBudget
}

// Summary is the budget-bounded set of diffs for a request.
type Summary struct {
	Diffs            []budget.StackedDiff `json:"diffs"`
	TotalGroups      int                  `json:"total_groups"`
	MissingVersions  int                  `json:"missing_versions"`
	Identical        int                  `json:"identical"`
	Truncated        int                  `json:"truncated"`
	OmittedForBudget int                  `json:"omitted_for_budget"`
	Budget           budget.DiffBudget    `json:"budget"`
}
