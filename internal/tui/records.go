// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the record browser: a filterable table of all
// community records with a detail pane. The detail pane can toggle a
// redacted preview, which runs the record through the privacy transformer
// under the policy it was sealed with (or the default policy).
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
	"github.com/lorekeeper/lorekeeper/internal/privacy"
	"github.com/lorekeeper/lorekeeper/util/mapst"
	"github.com/lorekeeper/lorekeeper/util/slicest"
)

type recordsModel struct {
	table        table.Model
	allRecords   []model.CommunityRecord // Master list of all records
	visible      []model.CommunityRecord // Rows currently in the table, same order
	sealedByID   map[string]model.SealedRecord
	filter       string
	filterCol    int // 0=all, 1=id, 2=name, 3=context
	isFiltering  bool
	showDetail   bool
	showRedacted bool
	err          error
}

func newRecordsModel() *recordsModel {
	m := &recordsModel{}
	records, err := db.GetAllRecords()
	if err != nil {
		m.err = err
		return m
	}
	sealed, err := db.GetAllSealedRecords()
	if err != nil {
		m.err = err
		return m
	}
	m.allRecords = records
	m.sealedByID = slicest.ToMap(sealed, func(s model.SealedRecord) (string, model.SealedRecord) {
		return s.RecordID, s
	})

	m.table = newVaultTable([]table.Column{
		{Title: i18n.T("records.header.record_id"), Width: 16},
		{Title: i18n.T("records.header.name"), Width: 28},
		{Title: i18n.T("records.header.context"), Width: 32},
		{Title: i18n.T("records.header.sealed"), Width: 10},
	}, 15)
	m.rebuildTableRows()
	return m
}

// sortedContextKeys returns the cultural context keys in stable display order.
func sortedContextKeys(ctx map[string]any) []string {
	return mapst.SortedKeys(ctx)
}

// contextKeySummary renders the cultural context keys of a record as a
// short, stable string for the table. Values stay out of the list view.
func contextKeySummary(ctx map[string]any) string {
	if len(ctx) == 0 {
		return "-"
	}
	return strings.Join(sortedContextKeys(ctx), ",")
}

// rebuildTableRows filters the master list of records and populates the table.
func (m *recordsModel) rebuildTableRows() {
	var rows []table.Row
	m.visible = m.visible[:0]
	lowerFilter := strings.ToLower(m.filter)

	for _, r := range m.allRecords {
		ctxSummary := contextKeySummary(r.CulturalContext)

		match := false
		switch m.filterCol {
		case 0: // all
			match = strings.Contains(strings.ToLower(r.ID), lowerFilter) ||
				strings.Contains(strings.ToLower(r.Name), lowerFilter) ||
				strings.Contains(strings.ToLower(ctxSummary), lowerFilter)
		case 1:
			match = strings.Contains(strings.ToLower(r.ID), lowerFilter)
		case 2:
			match = strings.Contains(strings.ToLower(r.Name), lowerFilter)
		case 3:
			match = strings.Contains(strings.ToLower(ctxSummary), lowerFilter)
		}
		if m.filter != "" && !match {
			continue
		}

		sealedCell := specialStyle.Render(i18n.T("records.sealed_no"))
		if _, ok := m.sealedByID[r.ID]; ok {
			sealedCell = successStyle.Render(i18n.T("records.sealed_yes"))
		}

		rows = append(rows, table.Row{r.ID, r.Name, ctxSummary, sealedCell})
		m.visible = append(m.visible, r)
	}
	m.table.SetRows(rows)

	// Go to the top of the table after filtering
	if m.isFiltering {
		m.table.GotoTop()
	}
}

// selectedRecord returns the record under the cursor, or nil when the
// table is empty.
func (m *recordsModel) selectedRecord() *model.CommunityRecord {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	r := m.visible[idx]
	return &r
}

func (m *recordsModel) Init() tea.Cmd {
	return nil
}

func (m *recordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header(3) + filter/help(3)
		m.table.SetHeight(msg.Height - 6)
		m.table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		// The detail pane swallows all keys until it is closed.
		if m.showDetail {
			switch msg.String() {
			case "q", "esc":
				m.showDetail = false
				m.showRedacted = false
			case "r":
				m.showRedacted = !m.showRedacted
			}
			return m, nil
		}

		// If filtering, handle input.
		if m.isFiltering {
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
				m.filterCol = (m.filterCol + 1) % 4
				m.rebuildTableRows()
			case tea.KeyShiftTab:
				m.filterCol = (m.filterCol + 3) % 4
				m.rebuildTableRows()
			}
			return m, nil
		}

		// Not filtering, handle commands.
		switch msg.String() {
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildTableRows()
			return m, nil
		case "enter":
			if m.selectedRecord() != nil {
				m.showDetail = true
				m.showRedacted = false
			}
			return m, nil
		case "q", "esc":
			if m.filter != "" {
				m.filter = ""
				m.isFiltering = false
				m.rebuildTableRows()
				return m, nil
			}
			return m, func() tea.Msg { return backToMenuMsg{} }
		}
	}

	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *recordsModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error loading records: %v", m.err))
	}

	if m.showDetail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 "+i18n.T("records.title")) + "\n\n")

	if len(m.allRecords) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("records.empty")))
		b.WriteString(m.footerView())
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString(m.footerView())
	return b.String()
}

// detailView renders the selected record, optionally after running it
// through the privacy transformer.
func (m *recordsModel) detailView() string {
	record := m.selectedRecord()
	if record == nil {
		return ""
	}

	sealed, isSealed := m.sealedByID[record.ID]
	policy := model.DefaultPolicy()
	if isSealed {
		policy = sealed.Policy
	}

	var lines []string
	lines = append(lines, titleStyle.Render("📜 "+i18n.T("records.detail_title")), "")

	shown := *record
	if m.showRedacted {
		shown = privacy.ApplyPolicy(shown, policy)
		lines = append(lines, specialStyle.Render(i18n.T("records.detail_redacted",
			string(policy.SensitivityLevel), policy.Anonymize)), "")
	}

	lines = append(lines,
		fmt.Sprintf("%s  %s", helpStyle.Render("ID:"), shown.ID),
		fmt.Sprintf("%s  %s", helpStyle.Render("Name:"), shown.Name),
		fmt.Sprintf("%s  %s", helpStyle.Render("Content:"), shown.Content),
		"",
		helpStyle.Render(i18n.T("records.detail_context")),
	)
	if len(shown.CulturalContext) == 0 {
		lines = append(lines, "  "+i18n.T("records.detail_none"))
	} else {
		for _, k := range sortedContextKeys(shown.CulturalContext) {
			lines = append(lines, fmt.Sprintf("  %s: %v", k, shown.CulturalContext[k]))
		}
	}

	lines = append(lines, "")
	if isSealed {
		lines = append(lines, successStyle.Render(i18n.T("records.detail_sealed_under",
			string(policy.AccessLevel), string(policy.SensitivityLevel))))
	} else {
		lines = append(lines, helpStyle.Render(i18n.T("records.detail_not_sealed")))
	}
	lines = append(lines, "", helpStyle.Render(i18n.T("records.detail_help")))

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return pane
}

func (m *recordsModel) footerView() string {
	scopes := []string{
		i18n.T("all"),
		i18n.T("records.header.record_id"),
		i18n.T("records.header.name"),
		i18n.T("records.header.context"),
	}
	return filterFooter(m.isFiltering, m.filter, "records", scopes[m.filterCol])
}
