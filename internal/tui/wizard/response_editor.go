package wizard

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/gosimple/slug"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
)

// editorClosedMsg is sent when the external editor exits.
type editorClosedMsg struct {
	path string
	err  error
}

// responseFileName is the temp file pattern for a response of the current step.
func (m *Model) responseFileName() string {
	st := m.ctrl.State()
	name := slug.Make(st.Definition().Title + " " + st.Current().Title)
	return "cpmflow_" + name + "_*.json"
}

// openEditor writes the raw response of the current step to a temp file and
// opens it in $EDITOR. The file is removed once the editor exits.
func (m *Model) openEditor() tea.Cmd {
	o, ok := m.currentOutcome()
	if !ok || o.Kind != flow.Success || len(o.Payload.Raw) == 0 {
		return nil
	}

	tmpfile, err := os.CreateTemp("", m.responseFileName())
	if err != nil {
		logger.Warn("wizard: creating response file: %v", err)
		return nil
	}
	if _, err := tmpfile.WriteString(render.Indent(o.Payload.Raw)); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("cpmflow", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorClosedMsg{path: path, err: err}
	})
}

func (m *Model) editorClosed(msg editorClosedMsg) {
	if msg.err != nil {
		logger.Warn("wizard: editor exited: %v", msg.err)
	}
	if err := os.Remove(msg.path); err != nil && !os.IsNotExist(err) {
		logger.Debug("wizard: removing %s: %v", msg.path, err)
	}
}
