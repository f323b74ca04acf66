// Package browse provides the Bubble Tea pattern browser.
package browse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/plminer/internal/model"
)

// SortMode orders the pattern list.
type SortMode int

const (
	ByFrequency SortMode = iota
	ByPattern
)

func (s SortMode) String() string {
	if s == ByPattern {
		return "pattern"
	}
	return "frequency"
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	detailStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the pattern browser.
type Model struct {
	patterns []model.Pattern
	visible  []int
	sortMode SortMode

	table      table.Model
	detail     bool
	filterMode bool
	filter     textinput.Model

	width  int
	height int
}

// NewModel builds a browser over patterns.
func NewModel(patterns []model.Pattern) *Model {
	m := &Model{patterns: patterns}
	m.filter = textinput.New()
	m.filter.Prompt = "Filter: "
	m.filter.CharLimit = 0
	m.filter.Cursor.SetMode(cursor.CursorBlink)
	m.table = table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.table.SetStyles(tableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "s":
			m.sortMode = (m.sortMode + 1) % 2
			m.refresh()
			return m, nil
		case "enter":
			m.detail = !m.detail
			m.updateLayout()
			return m, nil
		case "/":
			m.filterMode = true
			return m, m.filter.Focus()
		case "g", "home":
			m.table.GotoTop()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filterMode = false
		m.filter.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.filterMode = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// Selected returns the pattern under the cursor.
func (m *Model) Selected() (model.Pattern, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return model.Pattern{}, false
	}
	return m.patterns[m.visible[idx]], true
}

// Visible returns the displayed patterns in display order.
func (m *Model) Visible() []model.Pattern {
	out := make([]model.Pattern, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.patterns[idx]
	}
	return out
}

// refresh recomputes the filtered, sorted index and table rows.
func (m *Model) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, p := range m.patterns {
		if query == "" || strings.Contains(strings.ToLower(label(p)), query) {
			m.visible = append(m.visible, i)
		}
	}
	sort.SliceStable(m.visible, func(i, j int) bool {
		a, b := m.patterns[m.visible[i]], m.patterns[m.visible[j]]
		if m.sortMode == ByPattern {
			return label(a) < label(b)
		}
		return a.Frequency > b.Frequency
	})
	rows := make([]table.Row, 0, len(m.visible))
	for rank, idx := range m.visible {
		p := m.patterns[idx]
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", rank+1),
			fmt.Sprintf("%d", p.Frequency),
			label(p),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

func (m *Model) updateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	_, bodyHeight, _ := m.layoutHeights()
	tableHeight := bodyHeight
	if m.detail {
		tableHeight = bodyHeight / 2
	}
	m.table.SetHeight(maxInt(2, tableHeight))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 1
	footerHeight = 1
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := m.table.View()
	if m.detail {
		tableHeight := lipgloss.Height(body)
		body = body + "\n" + m.renderDetail(bodyHeight-tableHeight)
	}
	body = fitLines(body, m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	text := fmt.Sprintf("plminer · %d/%d patterns · sorted by %s", len(m.visible), len(m.patterns), m.sortMode)
	if q := strings.TrimSpace(m.filter.Value()); q != "" && !m.filterMode {
		text += fmt.Sprintf(" · filter %q", q)
	}
	return headerStyle.Render(text)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filter.View() + mutedStyle.Render("  enter apply · esc clear")
	}
	return mutedStyle.Render("↑/↓ move · s sort · enter details · / filter · q quit")
}

func (m *Model) renderDetail(height int) string {
	p, ok := m.Selected()
	if !ok {
		return mutedStyle.Render("No pattern selected.")
	}
	innerWidth := maxInt(10, m.width-4)
	lines := []string{
		labelStyle.Render("Pattern:"),
		wrapStyledRunes(highlightRunes(label(p), m.filter.Value()), innerWidth),
	}
	fields := [][2]string{
		{"ID", p.ID},
		{"Frequency", fmt.Sprintf("%d", p.Frequency)},
		{"Title", p.Title},
		{"Problem", p.Problem},
		{"Context", p.Context},
		{"Keywords", strings.Join(p.Keywords, ", ")},
		{"Tags", strings.Join(p.Tags, ", ")},
		{"Sources", joinSources(p.Sources)},
	}
	if p.Cluster != nil {
		fields = append(fields, [2]string{"Cluster", fmt.Sprintf("%d", *p.Cluster)})
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		lines = append(lines, labelStyle.Render(f[0]+": ")+f[1])
	}
	content := lipgloss.NewStyle().Width(innerWidth).Render(strings.Join(lines, "\n"))
	maxLines := maxInt(1, height-2)
	if contentLines := strings.Split(content, "\n"); len(contentLines) > maxLines {
		content = strings.Join(contentLines[:maxLines], "\n")
	}
	return detailStyle.Render(content)
}

func columns(width int) []table.Column {
	patternWidth := maxInt(20, width-18)
	return []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Freq", Width: 6},
		{Title: "Pattern", Width: patternWidth},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func label(p model.Pattern) string {
	switch {
	case p.Pattern != "":
		return p.Pattern
	case p.Name != "":
		return p.Name
	case p.Title != "":
		return p.Title
	default:
		return p.ID
	}
}

func joinSources(sources []model.Source) string {
	docs := make([]string, len(sources))
	for i, s := range sources {
		docs[i] = s.Document
	}
	return strings.Join(docs, ", ")
}
