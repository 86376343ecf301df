package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stamboom/pkg/family"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PersonListModel - Interactive person search
// =============================================================================

// PersonListModel is the bubbletea model for searching a family. Typing
// narrows the list with [family.Search]; an empty query lists everyone.
type PersonListModel struct {
	People   []family.Person
	Query    string
	Matches  []family.Person
	Cursor   int
	Offset   int
	Height   int
	Selected *family.Person
}

// NewPersonListModel creates a model listing people, pre-filtered by query.
func NewPersonListModel(people []family.Person, query string) PersonListModel {
	m := PersonListModel{People: people, Query: query, Height: 15}
	m.filter()
	return m
}

func (m *PersonListModel) filter() {
	if strings.TrimSpace(m.Query) == "" {
		m.Matches = m.People
	} else {
		m.Matches = family.Search(m.People, m.Query)
	}
	m.Cursor, m.Offset = 0, 0
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Matches) == 0 {
				return m, nil
			}
			p := m.Matches[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Query != "" {
				r := []rune(m.Query)
				m.Query = string(r[:len(r)-1])
				m.filter()
			}
		case tea.KeyRunes, tea.KeySpace:
			if msg.Type == tea.KeySpace {
				m.Query += " "
			} else {
				m.Query += string(msg.Runes)
			}
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Search Family"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleHighlight.Render("› ") + m.Query + listDimStyle.Render("▏"))
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.Matches))

	t := newTable("", "Name", "Born", "Birthplace", "Died")
	for i := m.Offset; i < end; i++ {
		p := m.Matches[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		t.Row(cursor, p.FullName(), dash(family.FormatDate(p.BirthDate)), dash(birthplace(p)), dash(family.FormatDate(p.DeathDate)))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == -1:
			return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
		case m.Offset+row == m.Cursor:
			return listSelectedStyle
		case col >= 2:
			return listDimStyle
		}
		return lipgloss.NewStyle()
	})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Matches) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Matches))))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func birthplace(p family.Person) string {
	switch {
	case p.BirthCity != "" && p.BirthCountry != "":
		return p.BirthCity + ", " + p.BirthCountry
	case p.BirthCity != "":
		return p.BirthCity
	}
	return p.BirthCountry
}
