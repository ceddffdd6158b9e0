package pipeline

import (
	"fmt"
	"strings"

	"github.com/scopify/benchmark-agent/internal/model"
)

// formatReferencesSection renders the references as literal markdown. The
// section is always appended to the report deterministically, never produced
// or rephrased by the model, so every retained source URL survives verbatim.
func formatReferencesSection(urls []string, info map[string]model.Reference) string {
	if len(urls) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## References\n\n")
	for i, u := range urls {
		ref := info[u]
		title := ref.Title
		if title == "" {
			title = u
		}
		if ref.SourceType != "" {
			fmt.Fprintf(&sb, "%d. [%s](%s) (%s)\n", i+1, title, u, ref.SourceType)
		} else {
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, title, u)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
