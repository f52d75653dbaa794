// Package wizard is the interactive view of one mounted flow.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

// CompletedMsg carries a finished request back to the wizard that started it.
type CompletedMsg struct {
	flow.Completion
}

// ExitMsg asks the parent to unmount the wizard.
type ExitMsg struct{}

// Options configures a wizard.
type Options struct {
	// Context is passed to requests. Defaults to context.Background.
	Context context.Context
	Render  render.Options
}

type focusKind int

const (
	focusField focusKind = iota
	focusAction
	focusNext
)

type focusable struct {
	kind focusKind
	key  string
}

// Model drives a flow.Controller from key presses.
type Model struct {
	ctrl       *flow.Controller
	ctx        context.Context
	renderOpts render.Options

	inputs  map[string]*textinput.Model
	focus   int
	spinner spinner.Model
	result  viewport.Model
	showRaw bool

	width  int
	height int
}

// New creates a wizard for ctrl with inputs pre-filled from its state.
func New(ctrl *flow.Controller, opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	st := ctrl.State()

	inputs := make(map[string]*textinput.Model)
	for _, f := range st.Definition().Fields() {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Placeholder
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.SetStyles(inputStyles())
		ti.SetWidth(50)
		ti.SetValue(st.Value(f.Key))
		inputs[f.Key] = &ti
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)

	return &Model{
		ctrl:       ctrl,
		ctx:        opts.Context,
		renderOpts: opts.Render,
		inputs:     inputs,
		spinner:    s,
		result:     vp,
		width:      60,
		height:     24,
	}
}

func inputStyles() textinput.Styles {
	t := theme.Current()
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

// Controller returns the controller the wizard drives.
func (m *Model) Controller() *flow.Controller { return m.ctrl }

// MountID identifies the mounted controller.
func (m *Model) MountID() uint64 { return m.ctrl.MountID() }

// Close unmounts the controller. Pending requests finish inertly.
func (m *Model) Close() { m.ctrl.Close() }

// Init focuses the first control of step 0.
func (m *Model) Init() tea.Cmd {
	m.focus = 0
	return m.applyFocus()
}

// SetSize updates the dimensions available to the wizard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	for _, in := range m.inputs {
		in.SetWidth(max(width-4, 10))
	}
	m.result.SetWidth(width)
	m.result.SetHeight(max(height-20, 5))
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CompletedMsg:
		return m.complete(msg.Completion)

	case spinner.TickMsg:
		if !m.Busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case editorClosedMsg:
		m.editorClosed(msg)
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return func() tea.Msg { return ExitMsg{} }
		case "tab", "down":
			m.moveFocus(1)
			return m.applyFocus()
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m.applyFocus()
		case "enter":
			return m.activate()
		case "ctrl+r":
			m.showRaw = !m.showRaw
			m.refreshResult()
			return nil
		case "ctrl+e":
			return m.openEditor()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.result, cmd = m.result.Update(msg)
			return cmd
		}
	}

	return m.forwardToInput(msg)
}

// forwardToInput passes msg to the focused input and records any change.
func (m *Model) forwardToInput(msg tea.Msg) tea.Cmd {
	f, ok := m.focused()
	if !ok || f.kind != focusField {
		return nil
	}
	in := m.inputs[f.key]
	updated, cmd := in.Update(msg)
	*in = updated

	if updated.Value() != m.ctrl.State().Value(f.key) {
		if _, err := m.ctrl.SetField(f.key, updated.Value()); err != nil {
			logger.Debug("wizard: field %s not updated: %v", f.key, err)
			in.SetValue(m.ctrl.State().Value(f.key))
		}
	}
	return cmd
}

// focusables lists the focus targets of the current step in tab order.
func (m *Model) focusables() []focusable {
	st := m.ctrl.State()
	step := st.Current()

	var out []focusable
	if !st.Frozen(st.Step()) {
		for _, f := range step.Fields {
			out = append(out, focusable{kind: focusField, key: f.Key})
		}
	}
	if step.Action != nil {
		out = append(out, focusable{kind: focusAction, key: step.Action.Slot})
	}
	if st.HasNext() {
		out = append(out, focusable{kind: focusNext})
	}
	return out
}

func (m *Model) focused() (focusable, bool) {
	items := m.focusables()
	if len(items) == 0 {
		return focusable{}, false
	}
	if m.focus >= len(items) {
		m.focus = len(items) - 1
	}
	return items[m.focus], true
}

func (m *Model) moveFocus(delta int) {
	n := len(m.focusables())
	if n == 0 {
		m.focus = 0
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// applyFocus focuses the input under the cursor and blurs the rest.
func (m *Model) applyFocus() tea.Cmd {
	for _, in := range m.inputs {
		in.Blur()
	}
	f, ok := m.focused()
	if !ok || f.kind != focusField {
		return nil
	}
	return m.inputs[f.key].Focus()
}

// activate handles enter on the focused control.
func (m *Model) activate() tea.Cmd {
	f, ok := m.focused()
	if !ok {
		return nil
	}
	st := m.ctrl.State()

	switch f.kind {
	case focusField:
		m.moveFocus(1)
		return m.applyFocus()

	case focusAction:
		if !st.ActionEnabled(f.key) {
			return nil
		}
		return m.trigger(f.key)

	case focusNext:
		if !st.CanAdvance() {
			return nil
		}
		if _, err := m.ctrl.Next(); err != nil {
			logger.Warn("wizard: advancing %s: %v", st.Definition().ID, err)
			return nil
		}
		m.focus = 0
		m.refreshResult()
		return m.applyFocus()
	}
	return nil
}

// trigger starts slot's request and returns the command that performs it.
func (m *Model) trigger(slot string) tea.Cmd {
	req, err := m.ctrl.Begin(slot)
	if err != nil {
		logger.Debug("wizard: %s not started: %v", slot, err)
		return nil
	}
	m.refreshResult()

	ctx := m.ctx
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return CompletedMsg{Completion: req.Do(ctx)}
		},
	)
}

func (m *Model) complete(done flow.Completion) tea.Cmd {
	if _, err := m.ctrl.Finish(done); err != nil {
		logger.Debug("wizard: completion for %s dropped: %v", done.Slot, err)
		return nil
	}
	m.refreshResult()
	return m.applyFocus()
}

// Busy reports whether any request of the flow is in flight.
func (m *Model) Busy() bool {
	st := m.ctrl.State()
	for _, a := range st.Definition().Actions() {
		if st.Outcome(a.Slot).Kind == flow.Loading {
			return true
		}
	}
	return false
}

// currentOutcome returns the outcome of the current step's action.
func (m *Model) currentOutcome() (flow.Outcome, bool) {
	st := m.ctrl.State()
	a := st.Current().Action
	if a == nil {
		return flow.Outcome{}, false
	}
	return st.Outcome(a.Slot), true
}

// refreshResult re-renders the response pane for the current step.
func (m *Model) refreshResult() {
	o, ok := m.currentOutcome()
	if !ok || o.Kind != flow.Success {
		m.result.SetContent("")
		return
	}
	var content string
	if m.showRaw {
		content = render.Highlight(o.Payload.Raw, theme.Current().BgSurface0)
	} else {
		content = strings.Join(render.Outcome(o, m.renderOpts), "\n")
	}
	m.result.SetContent(content)
	m.result.GotoTop()
}

// View renders the wizard.
func (m *Model) View() string {
	st := m.ctrl.State()
	step := st.Current()
	s := theme.Current().S()

	var b strings.Builder
	b.WriteString(m.header(st))
	b.WriteString("\n\n")
	b.WriteString(s.Heading.Render(step.Heading))
	b.WriteString("\n\n")

	if banner := st.Banner(); banner != "" {
		b.WriteString(s.ErrorBanner.Render(banner))
		b.WriteString("\n\n")
	}

	frozen := st.Frozen(st.Step())
	echo := st.Echo(st.Step())
	for _, f := range step.Fields {
		b.WriteString(s.Label.Render(f.Label))
		b.WriteString("\n")
		if frozen {
			b.WriteString(s.FrozenValue.Render(echo[f.Key]))
		} else {
			b.WriteString(m.inputs[f.Key].View())
		}
		b.WriteString("\n\n")
	}

	if frozen && step.SuccessBanner != "" {
		b.WriteString(s.SuccessBanner.Render("✓ " + step.SuccessBanner))
		b.WriteString("\n\n")
	}

	bar := NewButtonBar(m.buttons(st))
	bar.SetWidth(m.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")

	if o, ok := m.currentOutcome(); ok && o.Kind == flow.Success {
		b.WriteString("\n")
		b.WriteString(s.ResultTitle.Render("Response Data"))
		b.WriteString("\n")
		b.WriteString(s.Result.Render(m.result.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.HintBar(
		"tab", "focus",
		"enter", "activate",
		"ctrl+r", "raw json",
		"ctrl+e", "open in editor",
		"esc", "flows",
	))
	return b.String()
}

func (m *Model) header(st flow.State) string {
	t := theme.Current()
	s := t.S()

	left := s.HeaderBrand.Render("NHS") + " " + s.HeaderTitle.Render(st.Current().Title)

	steps := st.Definition().Steps
	colors := theme.Gradient(t.Primary, t.Tertiary, len(steps))
	var dots strings.Builder
	for i := range steps {
		glyph := "○"
		if i <= st.Step() {
			glyph = "●"
		}
		dots.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])).Render(glyph))
	}
	right := fmt.Sprintf("%s %s", s.Subtle.Render(fmt.Sprintf("Step %d of %d", st.Step()+1, len(steps))), dots.String())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) buttons(st flow.State) []Button {
	f, _ := m.focused()
	step := st.Current()

	var out []Button
	if a := step.Action; a != nil {
		label := a.Label
		if st.Outcome(a.Slot).Kind == flow.Loading {
			label = m.spinner.View() + " " + a.BusyLabel
		}
		out = append(out, Button{
			Label: label,
			State: buttonState(st.ActionEnabled(a.Slot), f.kind == focusAction),
		})
	}
	if st.HasNext() {
		out = append(out, Button{
			Label: "Next →",
			State: buttonState(st.CanAdvance(), f.kind == focusNext),
		})
	}
	return out
}
