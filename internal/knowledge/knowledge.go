// Package knowledge loads the campus knowledge base that grounds
// assistant answers.
//
// The knowledge base is a JSON document with free-form structure
// (facilities, schedules, contacts). It is rendered back to text and
// prepended to the model prompt. A missing file yields an empty base
// rather than an error so that the assistant still works, just without
// campus-specific grounding.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Base is a loaded knowledge base.
type Base struct {
	context string
}

// Load reads the knowledge base document at path.
//
// Missing file: returns an empty Base and no error.
// Malformed JSON: the raw file text is used as-is.
func Load(path string, logger *slog.Logger) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("knowledge base not found, continuing without it", "path", path)
			return &Base{}, nil
		}
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("knowledge base is not valid JSON, using raw text",
			"path", path, "error", err)
		return &Base{context: strings.TrimSpace(string(data))}, nil
	}

	return &Base{context: render(doc)}, nil
}

// Context returns the knowledge base rendered as prompt text.
// Empty when no knowledge base was loaded.
func (b *Base) Context() string {
	return b.context
}

// Empty reports whether the base carries no content.
func (b *Base) Empty() bool {
	return b.context == ""
}

// Size returns the rendered context length in bytes.
func (b *Base) Size() int {
	return len(b.context)
}

// render flattens the document into indented "key: value" lines with
// stable ordering, which reads better in a prompt than raw JSON.
func render(doc map[string]any) string {
	var sb strings.Builder
	renderValue(&sb, doc, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func renderValue(sb *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(val) {
			child := val[k]
			switch child.(type) {
			case map[string]any, []any:
				fmt.Fprintf(sb, "%s%s:\n", indent, k)
				renderValue(sb, child, depth+1)
			default:
				fmt.Fprintf(sb, "%s%s: %v\n", indent, k, child)
			}
		}
	case []any:
		for _, item := range val {
			switch item.(type) {
			case map[string]any, []any:
				renderValue(sb, item, depth)
			default:
				fmt.Fprintf(sb, "%s- %v\n", indent, item)
			}
		}
	default:
		fmt.Fprintf(sb, "%s%v\n", indent, val)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
