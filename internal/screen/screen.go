package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mockprep/internal/ui/layout"
)

// Screen is one page of the practice TUI.
type Screen interface {
	// Init returns the command to run when the screen becomes active.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen body. The header and footer are drawn by the app.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen put a short status, such as a countdown,
// on the right side of the header.
type StatusProvider interface {
	Status() string
}
