package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

// SelectedMsg is sent when a flow is chosen from the selector.
type SelectedMsg struct {
	ID flow.ID
}

// Selector lists the available flows.
type Selector struct {
	defs        []*flow.Definition
	selectedIdx int
	width       int
	height      int

	// rendered descriptions, keyed by flow, valid for descWidth
	desc      map[flow.ID]string
	descWidth int
}

// NewSelector creates a selector over defs.
func NewSelector(defs []*flow.Definition) *Selector {
	return &Selector{
		defs:   defs,
		width:  60,
		height: 20,
		desc:   make(map[flow.ID]string),
	}
}

// SetSize updates the dimensions for the selector.
func (s *Selector) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Selected returns the highlighted flow, or nil when there are none.
func (s *Selector) Selected() *flow.Definition {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.defs) {
		return nil
	}
	return s.defs[s.selectedIdx]
}

// Update handles keyboard navigation.
func (s *Selector) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch key := keyMsg.String(); key {
	case "up", "k", "shift+tab":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
		return nil

	case "down", "j", "tab":
		if s.selectedIdx < len(s.defs)-1 {
			s.selectedIdx++
		}
		return nil

	case "enter":
		def := s.Selected()
		if def == nil {
			return nil
		}
		return func() tea.Msg { return SelectedMsg{ID: def.ID} }

	default:
		// Digits jump straight to a flow.
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(s.defs) {
				s.selectedIdx = idx
				id := s.defs[idx].ID
				return func() tea.Msg { return SelectedMsg{ID: id} }
			}
		}
	}
	return nil
}

// View renders the flow list and the description of the highlighted flow.
func (s *Selector) View() string {
	st := theme.Current().S()

	var b strings.Builder
	b.WriteString(st.Heading.Render("Choose a flow"))
	b.WriteString("\n\n")

	if len(s.defs) == 0 {
		b.WriteString(st.Subtle.Render("No flows available"))
		return b.String()
	}

	for i, def := range s.defs {
		label := fmt.Sprintf("%d. %s", i+1, def.Title)
		tool := st.Subtle.Render(def.Tool)
		gap := max(36-lipgloss.Width(label), 2)
		if i == s.selectedIdx {
			b.WriteString(st.ListItemSelected.Render("› " + label + strings.Repeat(" ", gap) + tool))
		} else {
			b.WriteString(st.ListItem.Render("  " + label + strings.Repeat(" ", gap) + tool))
		}
		b.WriteString("\n")
	}

	if def := s.Selected(); def != nil && def.Description != "" {
		b.WriteString("\n")
		b.WriteString(s.description(def))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.HintBar(
		"↑/↓", "navigate",
		"enter", "start",
		"1-9", "jump",
		"q", "quit",
	))
	return b.String()
}

func (s *Selector) description(def *flow.Definition) string {
	if s.descWidth != s.width {
		clear(s.desc)
		s.descWidth = s.width
	}
	if out, ok := s.desc[def.ID]; ok {
		return out
	}
	out := renderMarkdown(def.Description, s.width-4)
	s.desc[def.ID] = out
	return out
}
