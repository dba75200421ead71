package version

import (
	"strings"
	"time"
)

// Version is an immutable content snapshot of a page at a revision,
// written at the end of a change group.
type Version struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	PageID        string    `json:"page_id"`
	ChangeGroupID string    `json:"change_group_id"`
	Revision      int64     `json:"revision"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// PageChangeGroup scopes a change group to the page it belongs to.
// Change group ids are only unique within a page.
type PageChangeGroup struct {
	PageID        string
	ChangeGroupID string
}

// Key returns the composite lookup key for the pair.
func (p PageChangeGroup) Key() string {
	return Key(p.PageID, p.ChangeGroupID)
}

// ResolveRequest asks for the content pair of one change group.
// ActivityContent is the pre-update snapshot carried by the activity log.
type ResolveRequest struct {
	PageID          string
	ChangeGroupID   string
	ActivityContent string
}

// ContentPair holds the before and after content of a change group.
type ContentPair struct {
	PageID         string `json:"page_id"`
	ChangeGroupID  string `json:"change_group_id"`
	BeforeContent  string `json:"before_content"`
	AfterContent   string `json:"after_content"`
	BeforeRevision int64  `json:"before_revision"`
	AfterRevision  int64  `json:"after_revision"`
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

// Key returns the composite key "{pageID}:{changeGroupID}". A ':' or '\'
// inside either id is backslash-escaped so distinct pairs never share a key.
func Key(pageID, changeGroupID string) string {
	return keyEscaper.Replace(pageID) + ":" + keyEscaper.Replace(changeGroupID)
}
