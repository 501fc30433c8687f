package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/instrux/pkg/diffpreview"
)

// Some predefined colors

var (
	ColorRed        = lipgloss.Color("1")
	ColorWhite      = lipgloss.Color("7")
	ColorBrightBlue = lipgloss.Color("33")
	ColorLightGray  = lipgloss.Color("243")
	ColorGray       = lipgloss.Color("238")
	ColorOrange     = lipgloss.Color("214")
)

type Theme struct {
	HeaderBarStyle   lipgloss.Style
	RevisionStyle    lipgloss.Style
	BorderStyle      lipgloss.Style
	MutedTextStyle   lipgloss.Style
	PrimaryTextStyle lipgloss.Style
	ErrorTextStyle   lipgloss.Style

	BreadcrumbBarStyle lipgloss.Style
	HelpBarStyle       lipgloss.Style

	// Preview styles the rendered diff inside the viewport.
	Preview diffpreview.Theme
}

var DarkTheme = Theme{
	HeaderBarStyle: lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1),
	RevisionStyle: lipgloss.NewStyle().
		Foreground(ColorOrange),
	BorderStyle: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray),
	MutedTextStyle: lipgloss.NewStyle().
		Foreground(ColorLightGray),
	PrimaryTextStyle: lipgloss.NewStyle().
		Foreground(ColorBrightBlue),
	ErrorTextStyle: lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true),

	BreadcrumbBarStyle: lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorBrightBlue).
		Foreground(ColorWhite),
	HelpBarStyle: lipgloss.NewStyle().
		Padding(0, 1),

	Preview: diffpreview.DarkTheme,
}

// PlainTheme renders without any styling.
var PlainTheme = Theme{
	Preview: diffpreview.PlainTheme,
}
