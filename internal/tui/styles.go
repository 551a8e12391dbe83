// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Shared lipgloss styles and palette. Views derive their own variants
// from these instead of hardcoding colors.
package tui // import "github.com/lorekeeper/lorekeeper/internal/tui"

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// The palette leans on archive tones: violet for highlights, parchment
// white for inverted text, ember orange for anything destructive.
const (
	colorSubtle    = lipgloss.Color("243")
	colorHighlight = lipgloss.Color("141")
	colorSpecial   = lipgloss.Color("214")
	colorError     = lipgloss.Color("160")
	colorSuccess   = lipgloss.Color("77")
	colorWhite     = lipgloss.Color("230")
)

var (
	// View titles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 2).
			Foreground(colorHighlight)

	// The dashboard banner, a wider variant of the view title.
	mainTitleStyle = titleStyle.Padding(1, 3)

	helpStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// specialStyle marks destructive or irreversible prompts.
	specialStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	// Menu rows.
	itemStyle         = lipgloss.NewStyle()
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Transient one-line notices, rendered inverted.
	statusMessageStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(colorHighlight).
				Padding(0, 1)

	// Rounded frame around the dashboard panes.
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	// Bold heading above a pane section.
	sectionStyle = lipgloss.NewStyle().Bold(true)

	// Bottom bar carrying key hints and the version string.
	footerBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Italic(true)
)

// newVaultTable builds a focused bubbles table with the shared header and
// selection chrome. The height is a placeholder until the first
// WindowSizeMsg arrives.
func newVaultTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)
	return t
}
