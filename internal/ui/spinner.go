package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
)

// Spinner is a single-line progress display for long paging operations. It
// animates while an engine streams updates and shows the most recent message
// beside the dot. The model quits once the update channel closes; q or
// ctrl+c requests cancellation and then waits for the engine to stop.
type Spinner struct {
	dot      spinner.Model
	updates  <-chan tasks.ProgressUpdate
	cancel   context.CancelFunc
	message  string
	canceled bool
}

type progressUpdateMsg tasks.ProgressUpdate

type progressDoneMsg struct{}

// NewSpinner creates a spinner fed by updates. cancel is invoked when the
// user requests cancellation; it may be nil.
func NewSpinner(updates <-chan tasks.ProgressUpdate, cancel context.CancelFunc) *Spinner {
	dot := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok))
	return &Spinner{
		dot:     dot,
		updates: updates,
		cancel:  cancel,
		message: "Starting...",
	}
}

// Init starts the animation and the first channel receive.
func (s *Spinner) Init() tea.Cmd {
	return tea.Batch(s.dot.Tick, s.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (s *Spinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if s.cancel != nil {
				s.cancel()
			}
			s.canceled = true
		}
		return s, nil

	case progressUpdateMsg:
		s.message = msg.Message
		return s, s.waitForUpdate()

	case progressDoneMsg:
		return s, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.dot, cmd = s.dot.Update(msg)
		return s, cmd
	}

	return s, nil
}

// waitForUpdate blocks on the update channel; a closed channel means the
// engine has finished.
func (s *Spinner) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-s.updates
		if !ok {
			return progressDoneMsg{}
		}
		return progressUpdateMsg(update)
	}
}

// View renders the spinner, the latest progress message, and the help line.
func (s *Spinner) View() string {
	message := s.message
	if s.canceled {
		message = styles.warn.Render("Cancelling, waiting for the current request...")
	}
	return fmt.Sprintf("%s %s\n%s\n", s.dot.View(), message, styles.help.Render("q to cancel"))
}
