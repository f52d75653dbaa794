// Package tui is the interactive terminal surface: a flow selector and the
// mounted flow wizard.
package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
	"github.com/nhsdigital/cpmflow/internal/tui/theme"
	"github.com/nhsdigital/cpmflow/internal/tui/wizard"
)

// Options configures the application.
type Options struct {
	Definitions []*flow.Definition
	API         flow.API
	// Prefill seeds the fields of every mounted flow, eg. environment and api_key from config.
	Prefill map[string]string
	// Initial mounts a flow directly instead of showing the selector.
	Initial flow.ID
	Render  render.Options
}

// App is the main Bubbletea model that manages the TUI application.
type App struct {
	opts     Options
	ctx      context.Context
	selector *Selector
	wizard   *wizard.Model
	toast    *Toast

	width    int
	height   int
	quitting bool
}

// NewApp creates the application.
func NewApp(ctx context.Context, opts Options) *App {
	return &App{
		opts:     opts,
		ctx:      ctx,
		selector: NewSelector(opts.Definitions),
		toast:    NewToast(),
		width:    80,
		height:   24,
	}
}

// Init mounts the initial flow when one was requested.
func (a *App) Init() tea.Cmd {
	if a.opts.Initial == "" {
		return nil
	}
	return a.mount(a.opts.Initial)
}

// Mounted returns the wizard of the mounted flow, or nil on the selector.
func (a *App) Mounted() *wizard.Model {
	return a.wizard
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSizes()
		return a, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, a.quit()
		case "q":
			if a.wizard == nil {
				return a, a.quit()
			}
		}

	case SelectedMsg:
		return a, a.mount(msg.ID)

	case wizard.ExitMsg:
		return a, a.unmount()

	case wizard.CompletedMsg:
		if a.wizard == nil || a.wizard.MountID() != msg.MountID {
			logger.Debug("app: dropping completion for unmounted flow (mount %d)", msg.MountID)
			return a, nil
		}

	case ShowToastMsg, ToastDismissMsg:
		return a, a.toast.Update(msg)
	}

	if a.wizard != nil {
		return a, a.wizard.Update(msg)
	}
	return a, a.selector.Update(msg)
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	if a.wizard != nil {
		a.wizard.Close()
	}
	return tea.Quit
}

// mount creates a fresh controller for id, so no state leaks between visits.
func (a *App) mount(id flow.ID) tea.Cmd {
	def, ok := flow.Lookup(a.opts.Definitions, id)
	if !ok {
		logger.Warn("app: unknown flow %q", id)
		return a.toast.Show("Unknown flow: " + string(id))
	}
	if a.wizard != nil {
		a.wizard.Close()
	}

	ctrl := flow.NewController(def, a.opts.API, a.opts.Prefill)
	a.wizard = wizard.New(ctrl, wizard.Options{Context: a.ctx, Render: a.opts.Render})
	a.propagateSizes()
	logger.Info("app: mounted %s (mount %d)", id, ctrl.MountID())
	return a.wizard.Init()
}

func (a *App) unmount() tea.Cmd {
	if a.wizard == nil {
		return nil
	}
	busy := a.wizard.Busy()
	a.wizard.Close()
	logger.Info("app: unmounted mount %d", a.wizard.MountID())
	a.wizard = nil

	if busy {
		return a.toast.Show("Request still running, its result will be discarded")
	}
	return nil
}

func (a *App) propagateSizes() {
	inner := inset(uv.Rect(0, 0, a.width, a.height), 2, 1)
	a.selector.SetSize(inner.Dx(), inner.Dy()-1)
	if a.wizard != nil {
		a.wizard.SetSize(inner.Dx(), inner.Dy())
	}
}

// View renders the current view onto a full-screen canvas.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())

	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = lipgloss.Color(theme.Current().BgBase)
	return view
}

// Draw renders all components to the screen buffer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	main := inset(area, 2, 1)

	if a.wizard != nil {
		DrawText(scr, main, a.wizard.View())
	} else {
		DrawText(scr, DrawPanel(scr, main, "NHS CPM Flows"), a.selector.View())
	}

	// Toast last so it appears on top of everything
	if content := a.toast.View(area.Dx()); content != "" {
		w := lipgloss.Width(content)
		h := lipgloss.Height(content)
		x := max(area.Max.X-w-1, area.Min.X)
		y := max(area.Max.Y-h-1, area.Min.Y)
		DrawText(scr, uv.Rectangle{
			Min: uv.Position{X: x, Y: y},
			Max: uv.Position{X: x + w, Y: y + h},
		}, content)
	}
}
