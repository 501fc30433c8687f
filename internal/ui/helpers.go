package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ScrollViewport moves vp according to k and reports whether k was a
// scrolling key.
func ScrollViewport(k tea.KeyMsg, vp *viewport.Model) bool {
	switch k.String() {
	case "up", "k":
		vp.ScrollUp(1)
	case "down", "j":
		vp.ScrollDown(1)
	case "pgup", "b":
		vp.PageUp()
	case "pgdown", " ", "f":
		vp.PageDown()
	case "home", "g":
		vp.GotoTop()
	case "end", "G":
		vp.GotoBottom()
	case "left", "h":
		vp.ScrollLeft(4)
	case "right", "l":
		vp.ScrollRight(4)
	default:
		return false
	}
	return true
}
