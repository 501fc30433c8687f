// Package ui is the terminal viewer for revision comparisons.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/diffpreview"
)

// DiffView shows one comparison in a scrollable viewport.
type DiffView struct {
	Width, Height int
	Theme         Theme

	comparison *service.Comparison
	sections   []diffmap.Group
	mode       diffpreview.Mode

	vp viewport.Model
	// first line of every section in the rendered content
	offsets []int

	ShuttingDown bool
}

var _ tea.Model = (*DiffView)(nil)

func NewDiffView(comparison *service.Comparison, theme Theme) *DiffView {
	v := &DiffView{
		Theme:      theme,
		comparison: comparison,
		sections:   comparison.Diff.Sections(),
		vp:         viewport.New(0, 0),
	}
	v.render()
	return v
}

func (v *DiffView) Init() tea.Cmd {
	return nil
}

// Mode returns which sides are currently shown.
func (v *DiffView) Mode() diffpreview.Mode {
	return v.mode
}

// Section returns the index of the section at the top of the viewport, -1
// if there are none.
func (v *DiffView) Section() int {
	current := -1
	for i, off := range v.offsets {
		if off > v.vp.YOffset {
			break
		}
		current = i
	}
	return current
}

func (v *DiffView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.Width, v.Height = msg.Width, msg.Height
		v.vp.Width = msg.Width
		v.vp.Height = max(msg.Height-2, 0) // header and status bar
		v.render()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			v.ShuttingDown = true
			return v, tea.Quit
		case "m", "tab":
			v.mode = v.mode.Next()
			v.render()
		case "n", "]":
			v.jump(1)
		case "p", "[":
			v.jump(-1)
		default:
			ScrollViewport(msg, &v.vp)
		}
	}
	return v, nil
}

// jump moves the viewport to the next (delta 1) or previous (delta -1) section.
func (v *DiffView) jump(delta int) {
	if len(v.offsets) == 0 {
		return
	}
	target := v.Section() + delta
	if delta < 0 && v.Section() >= 0 && v.vp.YOffset > v.offsets[v.Section()] {
		// scrolled into a section: go back to its start first
		target = v.Section()
	}
	target = min(max(target, 0), len(v.offsets)-1)
	v.vp.SetYOffset(v.offsets[target])
}

// render rebuilds the viewport content for the current mode, keeping the
// current section in view.
func (v *DiffView) render() {
	section := v.Section()

	if len(v.sections) == 0 {
		v.offsets = nil
		v.vp.SetContent(v.Theme.MutedTextStyle.Render(strings.TrimSpace(diffpreview.NoDifferences)))
		return
	}

	opts := diffpreview.DefaultRenderOptions
	opts.Mode = v.mode

	var sb strings.Builder
	v.offsets = make([]int, 0, len(v.sections))
	line := 0
	for i, g := range v.sections {
		if i > 0 {
			sb.WriteString("\n")
			line++
		}
		v.offsets = append(v.offsets, line)
		var part strings.Builder
		diffpreview.RenderSection(&part, g, v.Theme.Preview, opts)
		line += strings.Count(part.String(), "\n")
		sb.WriteString(part.String())
	}
	v.vp.SetContent(strings.TrimSuffix(sb.String(), "\n"))
	if section >= 0 {
		v.vp.SetYOffset(v.offsets[section])
	}
}

func (v *DiffView) header() string {
	c := v.comparison
	stats := c.Stats
	return v.Theme.HeaderBarStyle.Render(fmt.Sprintf("%s %s → %s %s  +%d -%d ~%d",
		c.OldRevision.InstructionID,
		v.Theme.RevisionStyle.Render(revisionLabel(c.OldRevision)),
		v.Theme.RevisionStyle.Render(revisionLabel(c.NewRevision)),
		v.Theme.MutedTextStyle.Render(fmt.Sprintf("(%d changes)", c.Diff.Len())),
		stats.Added, stats.Removed, stats.Modified,
	))
}

func revisionLabel(m service.RevisionMeta) string {
	if m.Revision == "" {
		return m.ID.String()
	}
	return m.Revision + "@" + m.ID.String()
}

func (v *DiffView) statusBar() string {
	crumb := "no changes"
	if i := v.Section(); i >= 0 {
		crumb = fmt.Sprintf("%s (%d/%d)", diffpreview.SectionTitle(v.sections[i].Section), i+1, len(v.sections))
	}
	crumb += " ⟩ " + v.mode.String()
	crumbRender := v.Theme.BreadcrumbBarStyle.Render(crumb)

	help := NewShortcuts("q", "quit", "m", "mode").
		AddIf(len(v.sections) > 1, "n/p", "section").
		Add("↑/↓", "scroll").
		Render(v.Theme)
	helpRender := v.Theme.HelpBarStyle.
		Width(max(v.Width-lipgloss.Width(crumbRender), 0)).
		Render(help)

	return lipgloss.JoinHorizontal(lipgloss.Top, helpRender, crumbRender)
}

func (v *DiffView) View() string {
	if v.Width == 0 && v.Height == 0 {
		return "" // no size yet
	}
	if v.ShuttingDown {
		// keeps the diff from lingering in the terminal after quitting
		return v.Theme.MutedTextStyle.Render("Bye!")
	}
	return v.header() + "\n" + v.vp.View() + "\n" + v.statusBar()
}

// Run shows the comparison until the user quits.
func Run(comparison *service.Comparison, theme Theme, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(NewDiffView(comparison, theme), opts...).Run()
	return err
}
