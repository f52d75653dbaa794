package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 3 * time.Second

// ToastDismissMsg is sent when the toast should be dismissed.
type ToastDismissMsg struct{}

// ShowToastMsg is sent to show a toast notification.
type ShowToastMsg struct {
	Text string
}

// Toast is a minimal notification shown in the bottom-right corner.
type Toast struct {
	message   string
	visible   bool
	dismissAt time.Time
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays msg and schedules its dismissal.
func (t *Toast) Show(msg string) tea.Cmd {
	t.message = msg
	t.visible = true
	t.dismissAt = time.Now().Add(toastDuration)

	remaining := time.Until(t.dismissAt)
	return tea.Tick(remaining, func(time.Time) tea.Msg {
		return ToastDismissMsg{}
	})
}

// Update handles messages for the toast component.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ShowToastMsg:
		return t.Show(msg.Text)
	case ToastDismissMsg:
		// A newer toast may have replaced the one this tick was for.
		if time.Now().Before(t.dismissAt) {
			return nil
		}
		t.visible = false
		t.message = ""
	}
	return nil
}

// View renders the toast box, or "" when hidden.
func (t *Toast) View(width int) string {
	if !t.visible || t.message == "" {
		return ""
	}

	th := theme.Current()
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.BgBase)).
		Background(lipgloss.Color(th.Warning)).
		Padding(0, 1).
		Bold(true)

	if lipgloss.Width(style.Render(t.message)) > width-2 {
		return style.Width(max(width-2, 1)).Render(t.message)
	}
	return style.Render(t.message)
}

// IsVisible returns whether the toast is currently visible.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// Message returns the current toast message (empty if not visible).
func (t *Toast) Message() string {
	if !t.visible {
		return ""
	}
	return t.message
}
