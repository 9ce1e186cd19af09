package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/tui/theme"
)

// Status renders the status bar at the bottom
type Status struct {
	Width    int
	Model    string
	Thinking bool
	Message  string
}

// NewStatus creates a new status bar
func NewStatus(width int, model string) *Status {
	return &Status{
		Width: width,
		Model: model,
	}
}

// SetWidth updates the status bar width
func (s *Status) SetWidth(width int) {
	s.Width = width
}

// SetThinking sets the thinking state
func (s *Status) SetThinking(thinking bool) {
	s.Thinking = thinking
}

// SetMessage sets the status message shown in place of the key hints
func (s *Status) SetMessage(msg string) {
	s.Message = msg
}

// View renders the status bar
func (s *Status) View() string {
	t := theme.Current

	hintStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	left := "Enter to send · /help for commands · Ctrl+C to quit"
	if s.Message != "" {
		left = s.Message
	}
	hint := hintStyle.Render(left)

	var rightContent string
	if s.Thinking {
		rightContent = lipgloss.NewStyle().
			Foreground(t.Primary).
			Render("● thinking...")
	} else {
		rightContent = lipgloss.NewStyle().
			Foreground(t.TextMuted).
			Background(t.BackgroundSecondary).
			Padding(0, 1).
			Render(s.Model)
	}

	spacing := s.Width - lipgloss.Width(hint) - lipgloss.Width(rightContent) - 2
	if spacing < 0 {
		spacing = 0
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		hint,
		lipgloss.NewStyle().Width(spacing).Render(""),
		rightContent,
	)
}
