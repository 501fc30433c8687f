package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/diffpreview"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

func comparison(oldDoc, newDoc string) *service.Comparison {
	d := diffmap.Diff(jsonvalue.MustParse(oldDoc), jsonvalue.MustParse(newDoc))
	c := &service.Comparison{
		OldRevision: service.RevisionMeta{ID: 1, InstructionID: "inst", Revision: "A"},
		NewRevision: service.RevisionMeta{ID: 2, InstructionID: "inst", Revision: "B"},
	}
	return c.WithDiff(d)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, v *DiffView, w, h int) *DiffView {
	t.Helper()
	m, cmd := v.Update(tea.WindowSizeMsg{Width: w, Height: h})
	assert.Nil(t, cmd)
	return m.(*DiffView)
}

const (
	oldDoc = `{"header":{"title":"a","revision":"A"},"steps":[{"n":1}],"footer":{"notes":"x"}}`
	newDoc = `{"header":{"title":"b","revision":"B"},"steps":[{"n":2}],"footer":{"notes":"y"}}`
)

func TestDiffViewRendersComparison(t *testing.T) {
	v := sized(t, NewDiffView(comparison(oldDoc, newDoc), PlainTheme), 80, 40)

	out := v.View()
	assert.Contains(t, out, "A@0000000000000001")
	assert.Contains(t, out, "B@0000000000000002")
	assert.Contains(t, out, "header (2 changes)")
	assert.Contains(t, out, "steps (1 change)")
	assert.Contains(t, out, "header.title")
	assert.Contains(t, out, "header (1/3) ⟩ both")
}

func TestDiffViewNoSizeYet(t *testing.T) {
	v := NewDiffView(comparison(oldDoc, newDoc), PlainTheme)
	assert.Empty(t, v.View())
}

func TestDiffViewEmpty(t *testing.T) {
	v := sized(t, NewDiffView(comparison(oldDoc, oldDoc), PlainTheme), 80, 10)
	assert.Equal(t, -1, v.Section())
	assert.Contains(t, v.View(), "No differences.")
	assert.Contains(t, v.View(), "no changes")

	// jumping without sections is a no-op
	v.Update(key("n"))
	assert.Equal(t, -1, v.Section())
}

func TestDiffViewSectionJumps(t *testing.T) {
	v := sized(t, NewDiffView(comparison(oldDoc, newDoc), PlainTheme), 80, 4)
	require.Len(t, v.offsets, 3)
	assert.Equal(t, 0, v.Section())

	v.Update(key("n"))
	assert.Equal(t, 1, v.Section())
	v.Update(key("]"))
	assert.Equal(t, 2, v.Section())
	v.Update(key("n"))
	assert.Equal(t, 2, v.Section(), "stays on the last section")

	v.Update(key("p"))
	assert.Equal(t, 1, v.Section())
	v.Update(key("["))
	v.Update(key("["))
	assert.Equal(t, 0, v.Section())
}

func TestDiffViewModeToggle(t *testing.T) {
	v := sized(t, NewDiffView(comparison(oldDoc, newDoc), PlainTheme), 80, 40)
	assert.Equal(t, diffpreview.ShowBoth, v.Mode())
	assert.Contains(t, v.View(), "old:")
	assert.Contains(t, v.View(), "new:")

	v.Update(key("m"))
	assert.Equal(t, diffpreview.ShowOld, v.Mode())
	assert.NotContains(t, v.View(), "new:")

	v.Update(key("tab"))
	assert.Equal(t, diffpreview.ShowNew, v.Mode())
	assert.NotContains(t, v.View(), "old:")
	assert.Contains(t, v.View(), "⟩ new")

	v.Update(key("m"))
	assert.Equal(t, diffpreview.ShowBoth, v.Mode())
}

func TestDiffViewQuit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			v := sized(t, NewDiffView(comparison(oldDoc, newDoc), PlainTheme), 80, 10)
			_, cmd := v.Update(key(k))
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.Equal(t, "Bye!", v.View())
		})
	}
}

func TestShortcutsRender(t *testing.T) {
	s := NewShortcuts("q", "quit").AddIf(false, "x", "hidden").Add("m", "mode")
	assert.Equal(t, "q quit, m mode", s.Render(PlainTheme))
	assert.Panics(t, func() { NewShortcuts("odd") })
}
