package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobhub/internal/model"
)

// FetchFunc runs the aggregate search for one page.
type FetchFunc func(ctx context.Context, page int) (model.AggregateResult, error)

// fetchTimeout bounds one page fetch, covering every provider's deadline.
const fetchTimeout = 2 * time.Minute

// ErrCancelled is returned when the user aborts a fetch with ctrl+c.
var ErrCancelled = errors.New("cancelled")

type fetchDoneMsg struct {
	page int
	res  model.AggregateResult
	err  error
}

func fetchCmd(fetch FetchFunc, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		res, err := fetch(ctx, page)
		return fetchDoneMsg{page: page, res: res, err: err}
	}
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33"))),
	)
}

type loaderModel struct {
	label   string
	fetch   FetchFunc
	page    int
	spinner spinner.Model
	result  model.AggregateResult
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(fetchCmd(m.fetch, m.page), m.spinner.Tick)
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.res
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Searching %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while the first page is fetched. It renders
// inline (no alt screen).
func RunLoader(label string, fetch FetchFunc, page int) (model.AggregateResult, error) {
	m := loaderModel{
		label:   label,
		fetch:   fetch,
		page:    page,
		spinner: newSpinner(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.AggregateResult{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
