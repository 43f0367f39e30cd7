package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	ColorBlack = lipgloss.Color("#000000")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
	ColorBg    = lipgloss.Color("#101518")
)

var (
	ColorAccent = lipgloss.Color("#00F19F") // buttons, progress
	ColorOK     = lipgloss.Color("#16EC06") // connected sensor
	ColorError  = lipgloss.Color("#FF0026") // unreachable sensor
	ColorSelect = lipgloss.Color("#FFDE00") // chosen difficulty
)

type Theme struct {
	background color.Color
	foreground color.Color
}

func New() Theme {
	return Theme{background: ColorBg, foreground: ColorWhite}
}

func (t Theme) Background() color.Color { return t.background }

func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.foreground)
}

func (t Theme) Text() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.foreground)
}

func (t Theme) Dim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorDim)
}

func (t Theme) Button(selected bool) lipgloss.Style {
	border := ColorAccent
	if selected {
		border = ColorSelect
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(t.foreground).
		Align(lipgloss.Center, lipgloss.Center)
}

func (t Theme) Status(ok, failed bool) lipgloss.Style {
	switch {
	case ok:
		return lipgloss.NewStyle().Foreground(ColorOK)
	case failed:
		return lipgloss.NewStyle().Foreground(ColorError)
	default:
		return t.Dim()
	}
}
