package diff

import (
	"encoding/json"
	"strings"
)

// Format identifies how content is encoded.
type Format int

const (
	// FormatPlain is free text.
	FormatPlain Format = iota
	// FormatMarkup is content wrapped in angle-bracket markup.
	FormatMarkup
	// FormatStructuredDocument is a JSON document tree with a "doc" root.
	FormatStructuredDocument
	// FormatGenericJSON is any other JSON object or array.
	FormatGenericJSON
)

// DocumentType is the root type tag of a structured document.
const DocumentType = "doc"

// String returns the string representation of a format.
func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatMarkup:
		return "markup"
	case FormatStructuredDocument:
		return "structured-document"
	case FormatGenericJSON:
		return "generic-json"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// DetectFormat sniffs the new content, falling back to the old content
// when the new content is blank.
func DetectFormat(oldContent, newContent string) Format {
	if strings.TrimSpace(newContent) != "" {
		return detect(newContent)
	}
	return detect(oldContent)
}

func detect(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatPlain
	}
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return FormatMarkup
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return FormatPlain
	}

	var root any
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		return FormatPlain
	}
	if obj, ok := root.(map[string]any); ok {
		if typ, _ := obj["type"].(string); typ == DocumentType {
			return FormatStructuredDocument
		}
	}
	return FormatGenericJSON
}
