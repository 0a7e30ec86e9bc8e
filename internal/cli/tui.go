package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listProblemStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// LayoutModel - Interactive position browser
// =============================================================================

// LayoutModel is the bubbletea model of the inspect command: a scrolling
// table of appearances with a detail pane listing the position map of the
// one under the cursor.
type LayoutModel struct {
	Result   *layout.Result
	Cursor   int
	Height   int
	Offset   int
	Detail   bool
	problems map[int]bool
}

// NewLayoutModel creates a browser over res.
func NewLayoutModel(res *layout.Result) LayoutModel {
	problems := make(map[int]bool, len(res.Problems))
	for _, col := range res.Problems {
		problems[col] = true
	}
	return LayoutModel{Result: res, Height: 15, problems: problems}
}

func (m LayoutModel) Init() tea.Cmd {
	return nil
}

func (m LayoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Result.Individuals)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		case "enter":
			if n > 0 {
				m.Detail = !m.Detail
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m LayoutModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Chart Layout"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d individuals · %d families · %d columns",
		len(m.Result.Individuals), len(m.Result.Families), m.Result.Width())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ positions  q quit"))
	b.WriteString("\n\n")

	if len(m.Result.Individuals) == 0 {
		b.WriteString(listDimStyle.Render("  (empty layout)"))
		return b.String()
	}
	if m.Detail {
		b.WriteString(m.detailView(m.Result.Individuals[m.Cursor]))
	} else {
		b.WriteString(m.tableView())
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Result.Individuals))))
	return b.String()
}

func (m LayoutModel) tableView() string {
	end := min(m.Offset+m.Height, len(m.Result.Individuals))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		ind := m.Result.Individuals[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := displayName(ind)
		if ind.Root {
			name += " *"
		}
		rows = append(rows, []string{cursor, ind.ID, name, lifeYears(ind), columnList(ind)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Life", "Columns").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Result.Individuals) {
				return lipgloss.NewStyle()
			}
			ind := m.Result.Individuals[idx]
			switch {
			case ind.Unpositioned || m.hasProblem(ind):
				return listProblemStyle.Bold(idx == m.Cursor)
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 3:
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

func (m LayoutModel) detailView(ind layout.IndividualLayout) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(fmt.Sprintf("%s (%s, appearance %d)", displayName(ind), ind.ID, ind.Occurrence)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(lifeYears(ind)))
	b.WriteString("\n\n")

	if ind.Unpositioned {
		b.WriteString(listProblemStyle.Render("  not positioned"))
		return b.String()
	}

	rows := make([][]string, 0, len(ind.Positions))
	for _, p := range ind.Positions {
		family := p.Family
		if family == "" {
			family = "—"
		}
		role := "child"
		if p.IsParent {
			role = "spouse"
		}
		rows = append(rows, []string{genealogy.Date{Ordinal: p.Ordinal}.String(), fmt.Sprintf("%d", p.Index), family, role})
	}
	b.WriteString(table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("From", "Column", "Family", "Role").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 1 && m.problems[ind.Positions[row].Index] {
				return listProblemStyle
			}
			return listNormalStyle
		}).
		Render())
	return b.String()
}

func (m LayoutModel) hasProblem(ind layout.IndividualLayout) bool {
	for _, sp := range ind.Spans {
		if m.problems[sp.Index] {
			return true
		}
	}
	return false
}

// =============================================================================
// Helpers
// =============================================================================

// lifeYears formats the life span as "1901–1977", marking estimates with ~.
func lifeYears(ind layout.IndividualLayout) string {
	birth := genealogy.Date{Ordinal: ind.Birth, Estimated: ind.BirthEstimated}
	death := genealogy.Date{Ordinal: ind.Death, Estimated: ind.DeathEstimated}
	return yearString(birth) + "–" + yearString(death)
}

func yearString(d genealogy.Date) string {
	s := fmt.Sprintf("%d", d.Year())
	if d.Estimated {
		s = "~" + s
	}
	return s
}

// columnList lists the distinct columns of a life line in span order.
func columnList(ind layout.IndividualLayout) string {
	var cols []string
	last := 0
	for i, sp := range ind.Spans {
		if i > 0 && sp.Index == last {
			continue
		}
		cols = append(cols, fmt.Sprintf("%d", sp.Index))
		last = sp.Index
	}
	return strings.Join(cols, " → ")
}
