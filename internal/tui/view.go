package tui

import (
	"fmt"
	"image"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/menu"
)

const (
	minWidth  = 40
	minHeight = 16
)

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	view.WindowTitle = "Aequus"
	view.BackgroundColor = m.theme.Background()

	if !m.ready {
		return view
	}
	view.SetContent(m.Render())
	return view
}

// Render draws the active screen scaled from the logical surface to the
// terminal.
func (m *Model) Render() string {
	w, h := m.viewportWidth, m.viewportHeight
	if w < minWidth || h < minHeight {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			m.theme.Dim().Render(fmt.Sprintf("terminal too small (%dx%d)", w, h)))
	}

	screen := m.state.Screen
	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(m.title(screen.Title(), w)).X(0).Y(1).ID("title"),
	}

	var selected menu.Event
	switch s := screen.(type) {
	case *menu.PrefMenu:
		selected = difficultyEvent(s.Difficulty)
		layers = append(layers, m.centered(fmt.Sprintf("Duration: %d min", s.Duration), 105))
	case *menu.InitMenu:
		layers = append(layers, m.centered(s.Summary(), 110))
	case *menu.SetupMenu:
		layers = append(layers, m.setupLayers(s)...)
	}

	for i, b := range screen.Buttons() {
		layers = append(layers, m.button(i, b, b.Event == selected))
	}

	canvas := lipgloss.NewCanvas(layers...)
	return canvas.Render()
}

func (m *Model) title(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, m.theme.Title().Render(text))
}

// centered places one line of text at logical height y.
func (m *Model) centered(text string, y int) *lipgloss.Layer {
	_, row := m.toCell(0, y)
	return lipgloss.NewLayer(m.title(m.theme.Text().Render(text), m.viewportWidth)).X(0).Y(row)
}

func (m *Model) button(i int, b menu.Button, selected bool) *lipgloss.Layer {
	r := m.cellRect(b.Rect)
	label := b.Label
	if i < 9 {
		label = fmt.Sprintf("%s (%d)", b.Label, i+1)
	}
	box := m.theme.Button(selected).
		Width(max(r.Dx(), lipgloss.Width(label)+2)).
		Height(max(r.Dy(), 3)).
		Render(label)
	return lipgloss.NewLayer(box).X(r.Min.X).Y(r.Min.Y).ID(string(b.Event))
}

func (m *Model) setupLayers(s *menu.SetupMenu) []*lipgloss.Layer {
	left, top := m.toCell(60, 90)
	right, _ := m.toCell(420, 90)
	barWidth := max(right-left-7, 10)

	filled := barWidth * s.Progress() / 100
	bar := m.theme.Status(true, false).Render(strings.Repeat("█", filled)) +
		m.theme.Dim().Render(strings.Repeat("░", barWidth-filled)) +
		m.theme.Text().Render(fmt.Sprintf(" %3d%%", s.Progress()))

	statuses := s.Statuses()
	rows := make([]string, 0, len(statuses))
	for _, name := range s.SensorNames() {
		st := statuses[name]
		style := m.theme.Status(st == bringup.StatusConnected, st == bringup.StatusError)
		rows = append(rows, fmt.Sprintf("%-6s %s", name, style.Render(st.String())))
	}
	_, listTop := m.toCell(0, 140)

	return []*lipgloss.Layer{
		lipgloss.NewLayer(bar).X(left).Y(top).ID("progress"),
		lipgloss.NewLayer(lipgloss.JoinVertical(lipgloss.Left, rows...)).X(left).Y(listTop).ID("sensors"),
	}
}

func difficultyEvent(d menu.Difficulty) menu.Event {
	switch d {
	case menu.DifficultyMedium:
		return menu.EventDifficultyMedium
	case menu.DifficultyHigh:
		return menu.EventDifficultyHigh
	default:
		return menu.EventDifficultyLow
	}
}

// toCell maps a logical point to a terminal cell.
func (m *Model) toCell(x, y int) (col, row int) {
	return x * m.viewportWidth / menu.Width, y * m.viewportHeight / menu.Height
}

func (m *Model) cellRect(r image.Rectangle) image.Rectangle {
	x0, y0 := m.toCell(r.Min.X, r.Min.Y)
	x1, y1 := m.toCell(r.Max.X, r.Max.Y)
	return image.Rect(x0, y0, x1, y1)
}

// toLogical maps the center of a terminal cell back to the logical surface.
func (m *Model) toLogical(col, row int) (x, y int) {
	if m.viewportWidth <= 0 || m.viewportHeight <= 0 {
		return -1, -1
	}
	x = (2*col + 1) * menu.Width / (2 * m.viewportWidth)
	y = (2*row + 1) * menu.Height / (2 * m.viewportHeight)
	return x, y
}
