package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle   lipgloss.Style
	HeaderBrand   lipgloss.Style
	Heading       lipgloss.Style
	Label         lipgloss.Style
	FrozenValue   lipgloss.Style
	ErrorBanner   lipgloss.Style
	SuccessBanner lipgloss.Style
	ResultTitle   lipgloss.Style
	Result        lipgloss.Style
	Subtle        lipgloss.Style
	Modal         lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		HeaderBrand: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true).
			Padding(0, 1),
		Heading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBright)).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)),
		FrozenValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)).
			Padding(0, 1),
		ErrorBanner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t.Error)).
			PaddingLeft(1),
		SuccessBanner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		ResultTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		Result: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Secondary)).
			Background(lipgloss.Color(t.BgBase)).
			Padding(1, 2),

		ListItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			PaddingLeft(2),
		ListItemSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true).
			PaddingLeft(2),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Secondary)).
			Bold(true),

		HintKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Bold(true),
		HintDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgSurface1)),
	}
}

// HintBar renders key-description pairs.
// Example: HintBar("tab", "next", "esc", "back") -> "tab next • esc back"
func (s *Styles) HintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + s.HintSeparator.Render("•") + " "
		}
		result += s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1])
	}
	return result
}
