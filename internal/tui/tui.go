// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui implements the interactive vault browser. The root model in
// this file owns the terminal size and routes every message to whichever
// screen is active; the screens themselves live in their own files.
package tui // import "github.com/lorekeeper/lorekeeper/internal/tui"

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/lorekeeper/lorekeeper/buildvars"
	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/logging"
	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/internal/state"
	"github.com/lorekeeper/lorekeeper/util/mapst"
	"github.com/lorekeeper/lorekeeper/util/slicest"
)

// viewState identifies the screen the root model currently shows.
type viewState int

const (
	menuView viewState = iota // dashboard plus navigation
	recordsView
	sealedView
	auditLogView
	languageView
)

// backToMenuMsg is sent by sub-views when the user leaves them.
type backToMenuMsg struct{}

// dashboardDataMsg carries a freshly loaded dashboard snapshot.
type dashboardDataMsg struct {
	data dashboardData
}

// languageChangedMsg asks the root model to rebuild itself so every screen
// picks up the new locale.
type languageChangedMsg struct{}

// ConfigSaver persists configuration changes made from the TUI, such as
// the selected language. The CLI installs a saver on startup; without one
// changes apply to the running session only.
type ConfigSaver interface {
	Save() error
}

// ConfigSaverFunc adapts a plain function to the ConfigSaver interface.
type ConfigSaverFunc func() error

// Save implements ConfigSaver.
func (f ConfigSaverFunc) Save() error { return f() }

var configSaver ConfigSaver = ConfigSaverFunc(func() error { return nil })

// SetConfigSaver installs the saver used when TUI settings change.
func SetConfigSaver(s ConfigSaver) {
	if s != nil {
		configSaver = s
	}
}

// mainModel is the root of the screen tree. Sub-models are built fresh
// each time their screen opens and dropped when the user backs out.
type mainModel struct {
	state     viewState
	menu      menuModel
	records   *recordsModel
	sealed    *sealedModel
	auditLog  *auditLogModel
	language  languageModel
	dashboard dashboardData
	width     int
	height    int
	err       error
}

// initialModel starts the TUI on the main menu.
func initialModel() mainModel {
	return mainModel{
		state: menuView,
		menu: menuModel{
			choices: []string{
				i18n.T("menu.browse_records"),
				i18n.T("menu.sealed_records"),
				i18n.T("menu.view_audit_log"),
				i18n.T("menu.language"),
			},
		},
	}
}

// Init loads the dashboard numbers before the first frame.
func (m mainModel) Init() tea.Cmd {
	return refreshDashboardCmd()
}

// Update handles window-level messages itself and forwards everything else
// to the active screen.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// Remember the size, then let the message fall through so the
		// open screen can lay out its table as well.
		m.width = msg.Width
		m.height = msg.Height
	case dashboardDataMsg:
		m.dashboard = msg.data
		if msg.data.err != nil {
			m.err = msg.data.err
		}
		return m, nil
	case languageChangedMsg:
		// Rebuild from scratch so cached translations are gone, keeping
		// only the terminal size.
		fresh := initialModel()
		fresh.width = m.width
		fresh.height = m.height
		return fresh, fresh.Init()
	case backToMenuMsg:
		m.state = menuView
		return m, refreshDashboardCmd()
	}

	switch m.state {
	case recordsView:
		next, cmd := m.records.Update(msg)
		m.records = next.(*recordsModel)
		return m, cmd
	case sealedView:
		next, cmd := m.sealed.Update(msg)
		m.sealed = next.(*sealedModel)
		return m, cmd
	case auditLogView:
		next, cmd := m.auditLog.Update(msg)
		m.auditLog = next.(*auditLogModel)
		return m, cmd
	case languageView:
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.pickLanguage(key.String())
		}
		return m, nil
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles navigation on the main menu.
func (m mainModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k", "down", "j":
		m.menu.cursor = moveCursor(m.menu.cursor, len(m.menu.choices)-1, key.String())
	case "enter":
		screens := []viewState{recordsView, sealedView, auditLogView, languageView}
		if m.menu.cursor < len(screens) {
			return m.openScreen(screens[m.menu.cursor])
		}
	case "L":
		// Shortcut to the language picker from anywhere on the dashboard.
		return m.openScreen(languageView)
	}
	return m, nil
}

// pickLanguage drives the locale picker. Choosing an entry applies the
// locale, persists it and triggers a full UI rebuild.
func (m mainModel) pickLanguage(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		m.state = menuView
		return m, refreshDashboardCmd()
	case "up", "k", "down", "j":
		m.language.cursor = moveCursor(m.language.cursor, len(m.language.orderedKeys)-1, key)
	case "enter":
		code := m.language.orderedKeys[m.language.cursor]
		i18n.SetLang(code)
		viper.Set("language", code)
		if err := configSaver.Save(); err != nil {
			m.err = fmt.Errorf("failed to save config: %w", err)
		}
		return m, func() tea.Msg { return languageChangedMsg{} }
	}
	return m, nil
}

// openScreen switches to the given screen with a fresh sub-model, seeding
// it with the current terminal size so its table sizes itself immediately.
func (m mainModel) openScreen(target viewState) (tea.Model, tea.Cmd) {
	m.state = target
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}

	var cmd tea.Cmd
	switch target {
	case recordsView:
		m.records = newRecordsModel()
		next, c := m.records.Update(size)
		m.records = next.(*recordsModel)
		cmd = c
	case sealedView:
		m.sealed = newSealedModel()
		next, c := m.sealed.Update(size)
		m.sealed = next.(*sealedModel)
		cmd = c
	case auditLogView:
		m.auditLog = newAuditLogModel()
		next, c := m.auditLog.Update(size)
		m.auditLog = next.(*auditLogModel)
		cmd = c
	case languageView:
		m.language = newLanguageModel()
	}
	return m, cmd
}

// moveCursor applies an up or down key to a cursor position, staying
// within [0, last].
func moveCursor(cursor, last int, key string) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			return cursor - 1
		}
	case "down", "j":
		if cursor < last {
			return cursor + 1
		}
	}
	return cursor
}

// View hands rendering to the active screen.
func (m mainModel) View() string {
	if m.err != nil {
		return errorStyle.Padding(1, 2).Render(fmt.Sprintf("An error occurred: %v", m.err))
	}

	switch m.state {
	case recordsView:
		return m.records.View()
	case sealedView:
		return m.sealed.View()
	case auditLogView:
		return m.auditLog.View()
	case languageView:
		return m.language.View()
	default:
		return m.menu.View(m.dashboard, m.width, m.height)
	}
}

// menuModel tracks the cursor on the navigation list. Rendering takes the
// dashboard snapshot as an argument, so the menu itself stays tiny.
type menuModel struct {
	choices []string
	cursor  int
}

// View renders the two-pane dashboard: navigation on the left, vault
// status and recent activity on the right.
func (m menuModel) View(data dashboardData, width, height int) string {
	title := mainTitleStyle.Render("🔐 " + i18n.T("dashboard.title"))
	header := lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render(i18n.T("dashboard.subtitle")))

	version := "Lorekeeper " + buildvars.VersionOrDefault("dev")
	footer := footerBarStyle.Render(AlignFooter(i18n.T("dashboard.footer"), version, width))

	// Two newlines of breathing room around the panes.
	paneHeight := height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	menuWidth := 38
	dashboardWidth := width - 4 - menuWidth - 2

	left := paneStyle.Width(menuWidth).Height(paneHeight).Render(m.navigation())
	right := paneStyle.Width(dashboardWidth).Height(paneHeight).MarginLeft(2).Render(data.render(dashboardWidth))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Top, header, body, footer)
}

// navigation renders the menu entries for the left pane.
func (m menuModel) navigation() string {
	lines := []string{sectionStyle.Render(i18n.T("menu.navigation")), ""}
	for i, choice := range m.choices {
		if i == m.cursor {
			lines = append(lines, selectedItemStyle.Render("▸ "+choice))
		} else {
			lines = append(lines, itemStyle.Render("  "+choice))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// dashboardData is the summary snapshot rendered on the main menu.
type dashboardData struct {
	recordCount      int
	sealedCount      int
	recordsUnderSeal int
	recordsOpen      int
	accessBreakdown  string
	recentLogs       []model.AuditLogEntry
	err              error
}

// render lays out the right-hand dashboard pane.
func (d dashboardData) render(paneWidth int) string {
	lines := []string{sectionStyle.Render(i18n.T("dashboard.vault_status")), ""}
	lines = append(lines, d.countLines()...)

	lines = append(lines, "", "", sectionStyle.Render(i18n.T("dashboard.protection_status")), "")
	sealedLine := successStyle.Render(i18n.T("dashboard.records_sealed", d.recordsUnderSeal))
	openLine := i18n.T("dashboard.records_open", d.recordsOpen)
	if d.recordsOpen > 0 {
		openLine = specialStyle.Render(openLine)
	}
	lines = append(lines, sealedLine, openLine)

	lines = append(lines, "", "", sectionStyle.Render(i18n.T("dashboard.policy_posture")), "")
	lines = append(lines, i18n.T("dashboard.access_spread")+d.accessBreakdown)

	lines = append(lines, "", "", sectionStyle.Render(i18n.T("dashboard.recent_activity")), "")
	lines = append(lines, d.activityLines(paneWidth)...)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// countLines aligns the record and envelope totals in a label column.
func (d dashboardData) countLines() []string {
	rows := [][2]string{
		{i18n.T("dashboard.records"), strconv.Itoa(d.recordCount)},
		{i18n.T("dashboard.sealed_envelopes"), strconv.Itoa(d.sealedCount)},
	}

	widest := 0
	for _, r := range rows {
		if len(r[0]) > widest {
			widest = len(r[0])
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, formatLabelPadding(r[0], r[1], widest))
	}
	return lines
}

// activityLines renders the recent audit entries, truncated to fit the pane.
func (d dashboardData) activityLines(paneWidth int) []string {
	if len(d.recentLogs) == 0 {
		return []string{helpStyle.Render(i18n.T("dashboard.no_recent_activity"))}
	}

	lines := make([]string, 0, len(d.recentLogs))
	for _, entry := range d.recentLogs {
		lines = append(lines, activityLine(entry, paneWidth))
	}
	return lines
}

// activityLine renders one audit entry as "MM-DD HH:MM ACTION details".
func activityLine(entry model.AuditLogEntry, paneWidth int) string {
	ts := entry.Timestamp
	if len(ts) >= 16 {
		ts = ts[5:16]
	}

	// Space left for the details once the pane border and padding, the
	// timestamp and the action have taken their share.
	room := paneWidth - 6 - len(ts) - len(entry.Action) - 2
	if room < 10 {
		room = 10
	}
	details := entry.Details
	if len(details) > room {
		details = details[:room-3] + "..."
	}

	action := auditActionStyle(entry.Action).Render(entry.Action)
	return strings.Join([]string{helpStyle.Render(ts), action, helpStyle.Render(details)}, " ")
}

// formatLabelPadding pads label to labelWidth so values line up in a column.
func formatLabelPadding(label, value string, labelWidth int) string {
	pad := labelWidth - len(label)
	if pad < 0 {
		pad = 0
	}
	return label + strings.Repeat(" ", pad) + " " + value
}

// languageModel lists the available locales. Key handling lives in the
// root model; this model only knows how to draw itself.
type languageModel struct {
	choices     map[string]string // locale code to display name
	orderedKeys []string          // stable display order
	cursor      int
}

// newLanguageModel builds the picker from the locales discovered at startup.
func newLanguageModel() languageModel {
	choices := i18n.GetAvailableLocales()
	return languageModel{
		choices:     choices,
		orderedKeys: mapst.SortedKeys(choices),
	}
}

// View renders the locale picker.
func (m languageModel) View() string {
	title := mainTitleStyle.Render("🌐 " + i18n.T("menu.language"))

	lines := []string{titleStyle.Render(i18n.T("language.select")), ""}
	for i, code := range m.orderedKeys {
		name := m.choices[code]
		if i == m.cursor {
			lines = append(lines, selectedItemStyle.Render("▸ "+name))
		} else {
			lines = append(lines, itemStyle.Render("  "+name))
		}
	}

	pane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	hint := footerBarStyle.Render(AlignFooter(i18n.T("language.help"), "", 60))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", pane, "", hint)
}

// Run starts the interactive program and blocks until the user quits.
func Run() {
	_, err := tea.NewProgram(initialModel()).Run()
	// The session passphrase dies with the TUI.
	state.PassphraseCache.Clear()
	if err != nil {
		logging.Errorf("interactive session failed: %v", err)
		os.Exit(1)
	}
}

// refreshDashboardCmd loads the numbers shown on the main menu dashboard.
func refreshDashboardCmd() tea.Cmd {
	return func() tea.Msg {
		fail := func(err error) tea.Msg {
			return dashboardDataMsg{data: dashboardData{err: err}}
		}

		records, err := db.GetAllRecords()
		if err != nil {
			return fail(err)
		}
		sealed, err := db.GetAllSealedRecords()
		if err != nil {
			return fail(err)
		}
		entries, err := db.GetAllAuditLogEntries()
		if err != nil {
			return fail(err)
		}

		data := dashboardData{
			recordCount: len(records),
			sealedCount: len(sealed),
		}

		sealedIDs := slicest.ToMap(sealed, func(s model.SealedRecord) (string, bool) {
			return s.RecordID, true
		})
		for _, r := range records {
			if sealedIDs[r.ID] {
				data.recordsUnderSeal++
			}
		}
		data.recordsOpen = data.recordCount - data.recordsUnderSeal

		// Entries come back newest first; the dashboard shows a handful.
		if len(entries) > 5 {
			entries = entries[:5]
		}
		data.recentLogs = entries

		// Access-level spread across the stored envelopes, most exposed
		// levels flagged for attention.
		counts := map[model.AccessLevel]int{}
		for _, s := range sealed {
			counts[s.Policy.AccessLevel]++
		}
		parts := slicest.Map(mapst.SortedKeys(counts), func(level model.AccessLevel) string {
			style := successStyle
			if level == model.AccessPublic {
				style = specialStyle
			}
			return style.Render(fmt.Sprintf("%s: %d", level, counts[level]))
		})
		data.accessBreakdown = strings.Join(parts, ", ")

		return dashboardDataMsg{data: data}
	}
}
