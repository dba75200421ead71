package diff

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ChangeKind classifies one node of a structural diff.
type ChangeKind string

const (
	ChangeAdd       ChangeKind = "add"
	ChangeRemove    ChangeKind = "remove"
	ChangeModify    ChangeKind = "modify"
	ChangeUnchanged ChangeKind = "unchanged"
)

// NodeChange describes the change of one top-level document node.
type NodeChange struct {
	Index int        `json:"index"`
	Kind  ChangeKind `json:"kind"`
	Old   string     `json:"old,omitempty"`
	New   string     `json:"new,omitempty"`
}

var errNotDocument = errors.New("content is not a structured document")

type document struct {
	Type    string            `json:"type"`
	Content []json.RawMessage `json:"content"`
}

// parseNodes returns the compacted top-level nodes of a structured
// document. Blank content is an empty document.
func parseNodes(content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	var doc document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}
	if doc.Type != DocumentType {
		return nil, errNotDocument
	}

	nodes := make([]string, 0, len(doc.Content))
	for _, raw := range doc.Content {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		nodes = append(nodes, buf.String())
	}
	return nodes, nil
}

// StructuralDiff compares the top-level nodes of two structured documents
// by position. If either side cannot be parsed the whole document is
// reported as a single modification.
func StructuralDiff(oldContent, newContent string) []NodeChange {
	oldNodes, oldErr := parseNodes(oldContent)
	newNodes, newErr := parseNodes(newContent)
	if oldErr != nil || newErr != nil {
		return []NodeChange{{Index: 0, Kind: ChangeModify, Old: oldContent, New: newContent}}
	}

	n := max(len(oldNodes), len(newNodes))
	changes := make([]NodeChange, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(oldNodes):
			changes = append(changes, NodeChange{Index: i, Kind: ChangeAdd, New: newNodes[i]})
		case i >= len(newNodes):
			changes = append(changes, NodeChange{Index: i, Kind: ChangeRemove, Old: oldNodes[i]})
		case oldNodes[i] != newNodes[i]:
			changes = append(changes, NodeChange{Index: i, Kind: ChangeModify, Old: oldNodes[i], New: newNodes[i]})
		default:
			changes = append(changes, NodeChange{Index: i, Kind: ChangeUnchanged, Old: oldNodes[i], New: newNodes[i]})
		}
	}
	return changes
}
