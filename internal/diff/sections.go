package diff

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is an addressable chunk of content, used to roll back part of
// a change.
type Section struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Format  Format `json:"format"`
	Content string `json:"content"`
}

var blankLine = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// ExtractSections splits content into sections: top-level nodes for
// structured documents, blank-line separated paragraphs otherwise.
// Section IDs are positional ("section-0", "section-1", ...).
func ExtractSections(content string) []Section {
	format := detect(content)

	var chunks []string
	switch format {
	case FormatStructuredDocument:
		nodes, err := parseNodes(content)
		if err != nil {
			chunks = paragraphs(content)
		} else {
			chunks = nodes
		}
	case FormatPlain, FormatMarkup, FormatGenericJSON:
		chunks = paragraphs(content)
	}

	sections := make([]Section, 0, len(chunks))
	for i, chunk := range chunks {
		sections = append(sections, Section{
			ID:      fmt.Sprintf("section-%d", i),
			Index:   i,
			Format:  format,
			Content: chunk,
		})
	}
	return sections
}

func paragraphs(content string) []string {
	var out []string
	for _, part := range blankLine.Split(content, -1) {
		part = strings.Trim(part, "\r\n")
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
