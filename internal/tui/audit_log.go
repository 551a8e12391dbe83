// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/model"
)

// filterColumns is the number of filterable columns plus the "all" scope.
const filterColumns = 5

type auditLogModel struct {
	table       table.Model
	allEntries  []model.AuditLogEntry // unfiltered, newest first
	filter      string
	filterCol   int // 0 searches all columns, 1..4 follow the table order
	isFiltering bool
	err         error
}

// auditActionStyle returns the style used to color-code an audit action.
// Sealing and creation are calm, anything that removes or replaces data
// gets the attention color.
func auditActionStyle(action string) lipgloss.Style {
	switch {
	case strings.HasPrefix(action, "ADD"),
		strings.HasPrefix(action, "SEAL"):
		return successStyle
	case strings.HasPrefix(action, "DELETE"),
		strings.HasPrefix(action, "UNSEAL"),
		strings.HasPrefix(action, "RESTORE"):
		return specialStyle
	case strings.HasPrefix(action, "UPDATE"),
		strings.HasPrefix(action, "EXPORT"),
		strings.HasPrefix(action, "INTEGRATE"):
		return helpStyle
	}
	return lipgloss.NewStyle()
}

func newAuditLogModel() *auditLogModel {
	m := &auditLogModel{}
	entries, err := db.GetAllAuditLogEntries()
	if err != nil {
		m.err = err
		return m
	}
	m.allEntries = entries

	m.table = newVaultTable([]table.Column{
		{Title: i18n.T("audit_log.header.timestamp"), Width: 20},
		{Title: i18n.T("audit_log.header.user"), Width: 14},
		{Title: i18n.T("audit_log.header.action"), Width: 18},
		{Title: i18n.T("audit_log.header.details"), Width: 62},
	}, 15)
	m.rebuildTableRows()
	return m
}

// entryMatches applies the current filter to one entry. Column 0 searches
// every field, the others match the single selected field.
func (m *auditLogModel) entryMatches(entry model.AuditLogEntry) bool {
	if m.filter == "" {
		return true
	}
	needle := strings.ToLower(m.filter)
	fields := []string{entry.Timestamp, entry.Username, entry.Action, entry.Details}
	if m.filterCol == 0 {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(fields[m.filterCol-1]), needle)
}

// rebuildTableRows reapplies the filter and swaps in the visible rows.
func (m *auditLogModel) rebuildTableRows() {
	rows := make([]table.Row, 0, len(m.allEntries))
	for _, entry := range m.allEntries {
		if !m.entryMatches(entry) {
			continue
		}

		// Timestamps are stored with fractional seconds; cut them so the
		// column stays aligned.
		ts := entry.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}

		// Color-code the action column; the table's Selected style overrides
		// the color on the highlighted row.
		action := auditActionStyle(entry.Action).Render(entry.Action)

		rows = append(rows, table.Row{ts, entry.Username, action, entry.Details})
	}
	m.table.SetRows(rows)

	// While the user types a filter the selection snaps to the first match.
	if m.isFiltering {
		m.table.GotoTop()
	}
}

// handleFilterKey consumes key input while the filter prompt is active.
func (m *auditLogModel) handleFilterKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isFiltering = false
		m.filter = ""
		m.rebuildTableRows()
	case tea.KeyEnter:
		m.isFiltering = false
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.rebuildTableRows()
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.rebuildTableRows()
	case tea.KeyTab:
		m.filterCol = (m.filterCol + 1) % filterColumns
		m.rebuildTableRows()
	case tea.KeyShiftTab:
		m.filterCol = (m.filterCol + filterColumns - 1) % filterColumns
		m.rebuildTableRows()
	}
}

func (m *auditLogModel) Init() tea.Cmd {
	return nil
}

func (m *auditLogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// The title block and the footer line take six rows between them.
		m.table.SetHeight(msg.Height - 6)
		m.table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		if m.isFiltering {
			m.handleFilterKey(msg)
			return m, nil
		}

		switch msg.String() {
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildTableRows()
			return m, nil
		case "q", "esc":
			// The first press only clears an active filter.
			if m.filter == "" {
				return m, func() tea.Msg { return backToMenuMsg{} }
			}
			m.filter = ""
			m.isFiltering = false
			m.rebuildTableRows()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *auditLogModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("The audit log could not be loaded: %v", m.err))
	}

	body := m.table.View()
	if len(m.table.Rows()) == 0 {
		body = helpStyle.Render(i18n.T("audit_log.empty"))
	}
	return titleStyle.Render("🧾 "+i18n.T("audit_log.title")) + "\n\n" + body + m.footerView()
}

func (m *auditLogModel) footerView() string {
	scopes := []string{
		i18n.T("all"),
		i18n.T("audit_log.header.timestamp"),
		i18n.T("audit_log.header.user"),
		i18n.T("audit_log.header.action"),
		i18n.T("audit_log.header.details"),
	}
	return filterFooter(m.isFiltering, m.filter, "audit_log", scopes[m.filterCol])
}
