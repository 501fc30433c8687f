// Package diffpreview renders diff results for terminals.
package diffpreview

import (
	"strings"

	"github.com/loog-project/instrux/pkg/diffmap"
)

// NoDifferences is rendered for an empty result.
const NoDifferences = "No differences.\n"

// Render renders result grouped by section, in discovery order.
func Render(result *diffmap.Result, theme Theme, opts RenderOptions) string {
	if result.IsEmpty() {
		return NoDifferences
	}
	var sb strings.Builder
	for i, g := range result.Sections() {
		if i > 0 {
			sb.WriteString("\n")
		}
		RenderSection(&sb, g, theme, opts)
	}
	return sb.String()
}
