package diffpreview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/instrux/pkg/diffmap"
)

type Theme struct {
	SectionStyle lipgloss.Style
	PathStyle    lipgloss.Style
	LabelStyle   lipgloss.Style

	KeyStyle    lipgloss.Style
	StringStyle lipgloss.Style
	NumberStyle lipgloss.Style
	BoolStyle   lipgloss.Style
	NullStyle   lipgloss.Style
	AbsentStyle lipgloss.Style

	AddedBg    lipgloss.Style
	RemovedBg  lipgloss.Style
	ModifiedBg lipgloss.Style
}

var DarkTheme = Theme{
	SectionStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C678DD")),
	PathStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ABB2BF")).Underline(true),
	LabelStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370")),

	KeyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	StringStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
	NumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
	BoolStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	NullStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),
	AbsentStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370")).Italic(true),

	AddedBg:    lipgloss.NewStyle().Background(lipgloss.Color("#144212")).Foreground(lipgloss.Color("#A9DC76")),
	RemovedBg:  lipgloss.NewStyle().Background(lipgloss.Color("#4C1F1F")).Foreground(lipgloss.Color("#E06C75")),
	ModifiedBg: lipgloss.NewStyle().Background(lipgloss.Color("#3E3A1F")).Foreground(lipgloss.Color("#E5C07B")),
}

// PlainTheme renders without any escape sequences.
var PlainTheme = Theme{}

func (t Theme) SyntaxHighlight(kind string, content string) string {
	switch kind {
	case "section":
		return t.SectionStyle.Render(content)
	case "path":
		return t.PathStyle.Render(content)
	case "label":
		return t.LabelStyle.Render(content)
	case "key":
		return t.KeyStyle.Render(content)
	case "string":
		return t.StringStyle.Render(content)
	case "number":
		return t.NumberStyle.Render(content)
	case "bool":
		return t.BoolStyle.Render(content)
	case "null":
		return t.NullStyle.Render(content)
	case "absent":
		return t.AbsentStyle.Render(content)
	default:
		return content
	}
}

func (t Theme) BackgroundHighlight(op diffmap.Op, content string) string {
	switch op {
	case diffmap.Added:
		return t.AddedBg.Render(content)
	case diffmap.Removed:
		return t.RemovedBg.Render(content)
	case diffmap.Modified:
		return t.ModifiedBg.Render(content)
	default:
		return content
	}
}
