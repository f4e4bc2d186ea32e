package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobhub/internal/config"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	searches []config.SavedSearch
	cursor   int
	chosen   int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.chosen = -2
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.searches)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.searches) > 0 {
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Saved searches")
	s += "\n"

	for i, ss := range m.searches {
		label := ss.Query
		if ss.Location != "" {
			label = fmt.Sprintf("%s (%s)", ss.Query, ss.Location)
		}
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// PickSearch shows an interactive selector over saved searches. ok is false
// if the user quit without choosing.
func PickSearch(searches []config.SavedSearch) (config.SavedSearch, bool, error) {
	m := pickerModel{
		searches: searches,
		chosen:   -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return config.SavedSearch{}, false, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return config.SavedSearch{}, false, nil
	}
	return searches[final.chosen], true, nil
}
