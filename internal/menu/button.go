package menu

import "image"

// Logical surface every screen lays itself out on. The renderer scales it
// to the real output.
const (
	Width  = 480
	Height = 320
)

// Button is a clickable region that yields Event.
type Button struct {
	Label string
	Event Event
	Rect  image.Rectangle
}

func (b Button) Contains(x, y int) bool {
	return image.Pt(x, y).In(b.Rect)
}

// hit returns the event of the first button under (x, y).
func hit(buttons []Button, x, y int) Event {
	for _, b := range buttons {
		if b.Contains(x, y) {
			return b.Event
		}
	}
	return EventNone
}

// column stacks full-width buttons under the title area.
func column(entries ...Button) []Button {
	const (
		w   = 220
		h   = 50
		top = 90
		gap = 15
	)
	x := (Width - w) / 2
	for i := range entries {
		y := top + i*(h+gap)
		entries[i].Rect = image.Rect(x, y, x+w, y+h)
	}
	return entries
}
