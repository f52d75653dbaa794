package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

// DrawText renders text at a position
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawPanel renders a panel with a "Title ────" header and returns the inner
// content area.
func DrawPanel(scr uv.Screen, area uv.Rectangle, title string) uv.Rectangle {
	headerHeight := 0

	if title != "" {
		headerHeight = 1
		s := theme.Current().S()

		styledTitle := s.ResultTitle.Render(title)
		ruleWidth := max(area.Dx()-lipgloss.Width(styledTitle)-1, 0)
		header := styledTitle + " " + s.HintSeparator.Render(strings.Repeat("─", ruleWidth))

		DrawText(scr, uv.Rectangle{
			Min: uv.Position{X: area.Min.X, Y: area.Min.Y},
			Max: uv.Position{X: area.Max.X, Y: area.Min.Y + 1},
		}, header)
	}

	innerHeight := max(area.Dy()-headerHeight, 0)
	return uv.Rectangle{
		Min: uv.Position{X: area.Min.X, Y: area.Min.Y + headerHeight},
		Max: uv.Position{X: area.Max.X, Y: area.Min.Y + headerHeight + innerHeight},
	}
}

// inset shrinks area by dx columns and dy rows on each side.
func inset(area uv.Rectangle, dx, dy int) uv.Rectangle {
	r := uv.Rectangle{
		Min: uv.Position{X: area.Min.X + dx, Y: area.Min.Y + dy},
		Max: uv.Position{X: area.Max.X - dx, Y: area.Max.Y - dy},
	}
	if r.Max.X < r.Min.X {
		r.Max.X = r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Max.Y = r.Min.Y
	}
	return r
}
