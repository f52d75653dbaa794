package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the buttons left to right, spread across the bar width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	var rendered []string
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	if len(rendered) == 1 {
		return lipgloss.PlaceHorizontal(b.width, lipgloss.Right, rendered[0])
	}

	// Action on the left, Next on the right.
	left := strings.Join(rendered[:len(rendered)-1], "")
	right := rendered[len(rendered)-1]
	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// buttonState maps enabled and focused flags to a state. Disabled wins.
func buttonState(enabled, focused bool) ButtonState {
	switch {
	case !enabled:
		return ButtonDisabled
	case focused:
		return ButtonFocused
	default:
		return ButtonNormal
	}
}
