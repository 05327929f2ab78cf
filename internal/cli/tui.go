package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// clusterGroup is one cluster and its member pages, prepared for browsing.
type clusterGroup struct {
	Name  string
	Pages []pageEntry
}

// pageEntry is a single page inside a cluster.
type pageEntry struct {
	Title string
	Path  string
}

// ClusterBrowserModel is the bubbletea model for interactive cluster
// browsing: a cluster list that drills down into the pages of the selected
// cluster.
type ClusterBrowserModel struct {
	Groups []clusterGroup

	cursor  int
	open    int // index of the opened cluster, -1 at the top level
	pageCur int
	height  int
}

// NewClusterBrowserModel creates a browser over the given groups.
func NewClusterBrowserModel(groups []clusterGroup) ClusterBrowserModel {
	return ClusterBrowserModel{Groups: groups, open: -1, height: 20}
}

func (m ClusterBrowserModel) Init() tea.Cmd {
	return nil
}

func (m ClusterBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.open >= 0 {
				m.open = -1
				m.pageCur = 0
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.open >= 0 {
				if m.pageCur > 0 {
					m.pageCur--
				}
			} else if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.open >= 0 {
				if m.pageCur < len(m.Groups[m.open].Pages)-1 {
					m.pageCur++
				}
			} else if m.cursor < len(m.Groups)-1 {
				m.cursor++
			}
		case "enter":
			if m.open < 0 && len(m.Groups) > 0 {
				m.open = m.cursor
				m.pageCur = 0
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m ClusterBrowserModel) View() string {
	if m.open >= 0 {
		return m.pagesView()
	}
	return m.clustersView()
}

func (m ClusterBrowserModel) clustersView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Clusters"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	for i, g := range m.Groups {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-28s %s", cursor, g.Name,
			listDimStyle.Render(fmt.Sprintf("%d pages", len(g.Pages))))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m ClusterBrowserModel) pagesView() string {
	g := m.Groups[m.open]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(g.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  esc back  q quit"))
	b.WriteString("\n\n")

	start, end := window(m.pageCur, len(g.Pages), m.height)
	for i := start; i < end; i++ {
		p := g.Pages[i]
		cursor := "  "
		if i == m.pageCur {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-40s %s", cursor, p.Title, listDimStyle.Render(p.Path))
		if i == m.pageCur {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.pageCur+1, len(g.Pages))))
	return b.String()
}

// window clamps a scrolling viewport of size height around cursor.
func window(cursor, total, height int) (start, end int) {
	if total <= height {
		return 0, total
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	end = start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}
