package diffpreview

import (
	"fmt"
	"strings"

	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// Mode selects which sides of an entry are rendered.
type Mode int

const (
	ShowBoth Mode = iota
	ShowOld
	ShowNew
)

func (m Mode) String() string {
	switch m {
	case ShowOld:
		return "old"
	case ShowNew:
		return "new"
	default:
		return "both"
	}
}

// Next cycles through the modes.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

type RenderOptions struct {
	IndentSize                int
	EnableBackgroundHighlight bool
	Mode                      Mode
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:                2,
	EnableBackgroundHighlight: true,
}

const (
	absentText  = "<absent>"
	rootSection = "(root)"
)

// SectionTitle is the heading used for a section; the root entry has none.
func SectionTitle(section string) string {
	if section == "" {
		return rootSection
	}
	return section
}

// RenderSection writes the heading and entries of one section group.
func RenderSection(sb *strings.Builder, g diffmap.Group, theme Theme, opts RenderOptions) {
	noun := "changes"
	if len(g.Entries) == 1 {
		noun = "change"
	}
	sb.WriteString(theme.SyntaxHighlight("section", SectionTitle(g.Section)))
	sb.WriteString(theme.SyntaxHighlight("label", fmt.Sprintf(" (%d %s)", len(g.Entries), noun)))
	sb.WriteString("\n")
	for _, e := range g.Entries {
		renderEntry(sb, e, theme, opts)
	}
}

func renderEntry(sb *strings.Builder, e diffmap.Entry, theme Theme, opts RenderOptions) {
	space := indent(1, opts)
	path := e.Path
	if path == "" {
		path = rootSection
	}
	op := e.Op().String()
	if e.TypeChanged() {
		op += fmt.Sprintf(" (%s → %s)", e.Old.Kind(), e.New.Kind())
	}
	if opts.EnableBackgroundHighlight {
		op = theme.BackgroundHighlight(e.Op(), op)
	}
	sb.WriteString(space + theme.SyntaxHighlight("path", path) + "  " + op + "\n")

	if opts.Mode != ShowNew {
		renderSide(sb, "old", e.Old, theme, opts)
	}
	if opts.Mode != ShowOld {
		renderSide(sb, "new", e.New, theme, opts)
	}
}

func renderSide(sb *strings.Builder, label string, v *jsonvalue.Value, theme Theme, opts RenderOptions) {
	sb.WriteString(indent(2, opts) + theme.SyntaxHighlight("label", label+":"))
	renderValue(sb, v, theme, opts, 3)
}

// renderValue writes v after a label: scalars on the same line, containers
// on the following lines in YAML-like form.
func renderValue(sb *strings.Builder, v *jsonvalue.Value, theme Theme, opts RenderOptions, level int) {
	switch v.Kind() {
	case jsonvalue.Undefined:
		sb.WriteString(" " + theme.SyntaxHighlight("absent", absentText) + "\n")
	case jsonvalue.Object:
		if v.Len() == 0 {
			sb.WriteString(" {}\n")
			return
		}
		sb.WriteString("\n")
		renderInlineObject(sb, v, theme, opts, level)
	case jsonvalue.Array:
		if v.Len() == 0 {
			sb.WriteString(" []\n")
			return
		}
		sb.WriteString("\n")
		renderInlineList(sb, v, theme, opts, level)
	default:
		sb.WriteString(" " + scalar(v, theme) + "\n")
	}
}

func renderInlineObject(sb *strings.Builder, v *jsonvalue.Value, theme Theme, opts RenderOptions, level int) {
	space := indent(level, opts)
	for _, m := range v.Members() {
		sb.WriteString(space + theme.SyntaxHighlight("key", m.Key) + ":")
		renderValue(sb, m.Value, theme, opts, level+1)
	}
}

func renderInlineList(sb *strings.Builder, v *jsonvalue.Value, theme Theme, opts RenderOptions, level int) {
	space := indent(level, opts)
	for _, item := range v.Elements() {
		sb.WriteString(space + "-")
		renderValue(sb, item, theme, opts, level+1)
	}
}

func scalar(v *jsonvalue.Value, theme Theme) string {
	switch v.Kind() {
	case jsonvalue.String:
		return theme.SyntaxHighlight("string", v.String())
	case jsonvalue.Number:
		return theme.SyntaxHighlight("number", v.String())
	case jsonvalue.Bool:
		return theme.SyntaxHighlight("bool", v.String())
	default:
		return theme.SyntaxHighlight("null", "null")
	}
}

func indent(level int, opts RenderOptions) string {
	size := opts.IndentSize
	if size <= 0 {
		size = DefaultRenderOptions.IndentSize
	}
	return strings.Repeat(" ", level*size)
}
