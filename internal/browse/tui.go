// Package browse is the terminal result browser for aggregate search.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobhub/internal/model"
)

// Lines per record in the list view (title + subtitle + blank separator).
const recordItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type browseModel struct {
	label  string
	fetch  FetchFunc
	result model.AggregateResult
	page   int

	list   viewport.Model
	cursor int
	width  int
	height int
	ready  bool

	view           viewState
	detail         model.JobRecord
	detailViewport viewport.Model

	loading bool
	loadErr string
	spinner spinner.Model
}

func newBrowseModel(label string, fetch FetchFunc, first model.AggregateResult) browseModel {
	page := first.Page
	if page < 1 {
		page = 1
	}
	return browseModel{
		label:   label,
		fetch:   fetch,
		result:  first,
		page:    page,
		spinner: newSpinner(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case fetchDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = fmt.Sprintf("page %d failed: %v", msg.page, msg.err)
			return m, nil
		}
		m.loadErr = ""
		m.result = msg.res
		m.page = msg.page
		m.cursor = 0
		m.list.SetYOffset(0)
		m.recalcContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView(), nil
	case "o":
		if rec, ok := m.selected(); ok {
			openURL(rec.URL)
		}
		return m, nil
	case "n", "right":
		if m.hasNext() {
			return m.loadPage(m.page + 1)
		}
		return m, nil
	case "p", "left":
		if m.page > 1 {
			return m.loadPage(m.page - 1)
		}
		return m, nil
	}

	// Forward other keys (pgup/pgdn/home/end) to the list viewport.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detail.URL)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) loadPage(page int) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.loadErr = ""
	return m, tea.Batch(fetchCmd(m.fetch, page), m.spinner.Tick)
}

func (m browseModel) hasNext() bool {
	limit := m.result.Limit
	if limit < 1 {
		limit = len(m.result.Records)
	}
	return limit > 0 && m.page*limit < m.result.Total
}

func (m browseModel) totalPages() int {
	limit := m.result.Limit
	if limit < 1 || m.result.Total == 0 {
		return 1
	}
	return (m.result.Total + limit - 1) / limit
}

func (m browseModel) selected() (model.JobRecord, bool) {
	if len(m.result.Records) == 0 {
		return model.JobRecord{}, false
	}
	return m.result.Records[m.cursor], true
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.result.Records)-1, 0))
	m.recalcContent()

	cursorTop := m.cursor * recordItemHeight
	cursorBottom := cursorTop + recordItemHeight - 1
	if cursorTop < m.list.YOffset {
		m.list.SetYOffset(cursorTop)
	} else if cursorBottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(cursorBottom - m.list.Height + 1)
	}
}

func (m browseModel) openDetailView() browseModel {
	rec, ok := m.selected()
	if !ok {
		return m
	}
	m.view = viewDetail
	m.detail = rec
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m
}

func (m *browseModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	w := max(m.width-2, 20)
	h := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(w, h)
		m.ready = true
	} else {
		m.list.Width = w
		m.list.Height = h
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.list.SetContent(renderRecords(m.result.Records, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf("%s · page %d/%d · %d results",
		m.label, m.page, m.totalPages(), m.result.Total))
	if m.result.Cached {
		header += subtitleStyle.Render(" (cached)")
	}

	pane := borderStyle.Width(m.list.Width).Render(m.list.View())

	return header + "\n" + pane + "\n" + m.statusBar()
}

func (m browseModel) statusBar() string {
	var parts []string
	switch {
	case m.loading:
		parts = append(parts, m.spinner.View()+" loading...")
	case m.loadErr != "":
		parts = append(parts, errorStyle.Render(m.loadErr))
	}
	if len(m.result.SourcesUsed) > 0 {
		parts = append(parts, "sources: "+strings.Join(m.result.SourcesUsed, ", "))
	}
	if n := len(m.result.ProviderErrors); n > 0 {
		names := make([]string, n)
		for i, pe := range m.result.ProviderErrors {
			names[i] = fmt.Sprintf("%s (%s)", pe.Provider, pe.Kind)
		}
		parts = append(parts, warnStyle.Render("failed: "+strings.Join(names, ", ")))
	}
	parts = append(parts, "↑/↓ cursor  Enter detail  n/p page  o open  q quit")
	return statusBarStyle.Width(m.width).Render(" " + strings.Join(parts, "  |  "))
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Listing Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	status := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + status
}

func (m browseModel) renderDetail() string {
	r := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", r.Title)
	addField("Company", r.Company)
	addField("Location", r.Location)
	addField("Kind", string(r.Kind))
	addField("Salary", r.Salary)
	addField("Source", r.Source)
	addField("ID", r.ID)
	if r.PostedAt != nil {
		addField("Posted", r.PostedAt.Local().Format("2006-01-02 15:04 MST"))
	}
	b.WriteByte('\n')
	addField("URL", r.URL)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if len(r.Requirements) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Requirements ") + "\n\n")
		for _, req := range r.Requirements {
			b.WriteString("  • " + req + "\n")
		}
	}
	if r.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Description ") + "\n\n")
		b.WriteString(descBodyStyle.Render(wordWrap(r.Description, wrapWidth)) + "\n")
	}

	return b.String()
}

func renderRecords(records []model.JobRecord, cursor int) string {
	if len(records) == 0 {
		return "  (no results)"
	}

	var b strings.Builder
	for i, r := range records {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Title))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle(r)))
		b.WriteByte('\n')

		if i < len(records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func subtitle(r model.JobRecord) string {
	posted := "n/a"
	if r.PostedAt != nil {
		posted = r.PostedAt.Format("2006-01-02")
	}
	parts := []string{}
	for _, s := range []string{r.Company, r.Location, string(r.Kind), posted, r.Source} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the full-screen browser over first, fetching further pages
// with fetch as the user pages through.
func Run(label string, fetch FetchFunc, first model.AggregateResult) error {
	p := tea.NewProgram(newBrowseModel(label, fetch, first), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
