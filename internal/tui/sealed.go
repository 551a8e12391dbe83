// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the sealed-records view: a table of stored envelopes
// with their policy snapshots, and the unseal flow that prompts for a
// passphrase, opens the envelope through the privacy engine and shows the
// decrypted record. The decrypted content can be copied to the clipboard.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/logging"
	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/internal/privacy"
	"github.com/lorekeeper/lorekeeper/internal/state"
	"github.com/lorekeeper/lorekeeper/util/slicest"
)

// sealedPhase tracks which step of the unseal flow is active.
type sealedPhase int

const (
	sealedPhaseList sealedPhase = iota
	sealedPhasePassphrase
	sealedPhaseDetail
)

var sealedFocusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

type sealedModel struct {
	table       table.Model
	sealed      []model.SealedRecord
	recordNames map[string]string // record ID -> display name
	phase       sealedPhase
	selected    *model.SealedRecord
	input       textinput.Model
	opened      *model.CommunityRecord
	engine      *privacy.Engine
	status      string // transient message in the detail view (copy result)
	openErr     string // error shown in the passphrase form
	err         error
}

func newSealedModel() *sealedModel {
	m := &sealedModel{engine: privacy.New(privacy.WithLogger(logging.L))}

	sealed, err := db.GetAllSealedRecords()
	if err != nil {
		m.err = err
		return m
	}
	records, err := db.GetAllRecords()
	if err != nil {
		m.err = err
		return m
	}
	m.sealed = sealed
	m.recordNames = slicest.ToMap(records, func(r model.CommunityRecord) (string, string) {
		return r.ID, r.Name
	})

	m.table = newVaultTable([]table.Column{
		{Title: i18n.T("sealed.header.record"), Width: 36},
		{Title: i18n.T("sealed.header.access"), Width: 12},
		{Title: i18n.T("sealed.header.sensitivity"), Width: 12},
		{Title: i18n.T("sealed.header.created"), Width: 18},
	}, 15)
	m.rebuildTableRows()
	return m
}

// displayName renders a sealed row's record column as "Name (id)" when the
// record still exists, and just the ID for orphaned envelopes.
func (m *sealedModel) displayName(recordID string) string {
	if name, ok := m.recordNames[recordID]; ok && name != "" {
		return fmt.Sprintf("%s (%s)", name, recordID)
	}
	return recordID
}

func (m *sealedModel) rebuildTableRows() {
	rows := make([]table.Row, 0, len(m.sealed))
	for _, s := range m.sealed {
		rows = append(rows, table.Row{
			m.displayName(s.RecordID),
			string(s.Policy.AccessLevel),
			string(s.Policy.SensitivityLevel),
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

// newPassphraseInput builds the masked text input for the unseal prompt.
func newPassphraseInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = i18n.T("unseal.placeholder")
	ti.Prompt = i18n.T("unseal.prompt")
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Width = 40
	ti.TextStyle = sealedFocusedStyle
	ti.Cursor.Style = sealedFocusedStyle
	ti.Focus()
	return ti
}

func (m *sealedModel) Init() tea.Cmd {
	return nil
}

func (m *sealedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header(3) + help(3)
		m.table.SetHeight(msg.Height - 6)
		m.table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch m.phase {
		case sealedPhasePassphrase:
			switch msg.String() {
			case "esc":
				m.phase = sealedPhaseList
				m.selected = nil
				m.openErr = ""
				return m, nil
			case "enter":
				m.unsealSelected()
				return m, nil
			}
			m.input, cmd = m.input.Update(msg)
			return m, cmd

		case sealedPhaseDetail:
			switch msg.String() {
			case "q", "esc":
				m.phase = sealedPhaseList
				m.selected = nil
				m.opened = nil
				m.status = ""
			case "c":
				if m.opened != nil {
					if err := clipboard.WriteAll(m.opened.Content); err != nil {
						m.status = errorStyle.Render(i18n.T("unseal.copy_error", err))
					} else {
						m.status = successStyle.Render(i18n.T("unseal.copied"))
					}
				}
			}
			return m, nil

		default: // sealedPhaseList
			switch msg.String() {
			case "enter":
				idx := m.table.Cursor()
				if idx >= 0 && idx < len(m.sealed) {
					s := m.sealed[idx]
					m.selected = &s
					// A passphrase that already opened an envelope this
					// session is tried silently before prompting again.
					if cached := state.PassphraseCache.Get(); cached != nil {
						record, err := m.engine.Decrypt(s.Envelope, string(cached))
						for i := range cached {
							cached[i] = 0
						}
						if err == nil {
							m.opened = record
							m.status = ""
							m.phase = sealedPhaseDetail
							return m, nil
						}
					}
					m.input = newPassphraseInput()
					m.openErr = ""
					m.phase = sealedPhasePassphrase
					return m, textinput.Blink
				}
				return m, nil
			case "q", "esc":
				return m, func() tea.Msg { return backToMenuMsg{} }
			}
		}
	}

	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// unsealSelected opens the selected envelope with the entered passphrase.
// Authentication failures never reveal which part of the envelope was wrong.
func (m *sealedModel) unsealSelected() {
	if m.selected == nil {
		m.phase = sealedPhaseList
		return
	}
	record, err := m.engine.Decrypt(m.selected.Envelope, m.input.Value())
	if err != nil {
		if privacy.IsAuthenticationError(err) {
			m.openErr = i18n.T("unseal.error_auth")
		} else {
			m.openErr = i18n.T("unseal.error", err)
		}
		m.input.SetValue("")
		return
	}
	m.opened = record
	m.status = ""
	state.PassphraseCache.Set([]byte(m.input.Value()))
	m.phase = sealedPhaseDetail
}

func (m *sealedModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error loading sealed records: %v", m.err))
	}

	switch m.phase {
	case sealedPhasePassphrase:
		return m.passphraseView()
	case sealedPhaseDetail:
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🔏 "+i18n.T("sealed.title")) + "\n\n")

	if len(m.sealed) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("sealed.empty")))
		b.WriteString("\n\n" + helpStyle.Render(i18n.T("sealed.help")))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n" + helpStyle.Render(i18n.T("sealed.help")))
	return b.String()
}

func (m *sealedModel) passphraseView() string {
	var items []string
	items = append(items, helpStyle.Render(m.displayName(m.selected.RecordID)), "")
	items = append(items, m.input.View())
	if m.openErr != "" {
		items = append(items, "", statusMessageStyle.Render(m.openErr))
	}

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2).
		Width(60).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))

	title := titleStyle.Render("🔓 " + i18n.T("unseal.title"))
	help := helpStyle.Render(i18n.T("unseal.help"))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", pane, "", help)
}

func (m *sealedModel) detailView() string {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("%s  %s", helpStyle.Render("ID:"), m.opened.ID),
		fmt.Sprintf("%s  %s", helpStyle.Render("Name:"), m.opened.Name),
		fmt.Sprintf("%s  %s", helpStyle.Render("Content:"), m.opened.Content),
	)
	if len(m.opened.CulturalContext) > 0 {
		lines = append(lines, "", helpStyle.Render(i18n.T("records.detail_context")))
		for _, k := range sortedContextKeys(m.opened.CulturalContext) {
			lines = append(lines, fmt.Sprintf("  %s: %v", k, m.opened.CulturalContext[k]))
		}
	}
	if m.selected != nil {
		lines = append(lines, "", successStyle.Render(i18n.T("records.detail_sealed_under",
			string(m.selected.Policy.AccessLevel), string(m.selected.Policy.SensitivityLevel))))
	}
	if m.status != "" {
		lines = append(lines, "", m.status)
	}

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	title := titleStyle.Render("🔓 " + i18n.T("unseal.success_title"))
	help := helpStyle.Render(i18n.T("unseal.detail_help"))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", pane, "", help)
}
