package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/tui/theme"
)

// Header renders the application header
type Header struct {
	Width   int
	Version string
	Tools   []string
}

// NewHeader creates a new header component
func NewHeader(width int, version string, tools []string) *Header {
	return &Header{
		Width:   width,
		Version: version,
		Tools:   tools,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header
func (h *Header) View() string {
	t := theme.Current

	logo := lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Render("◆ lfm")

	versionStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.BackgroundSecondary).
		Padding(0, 1).
		Render(fmt.Sprintf("v%s", h.Version))

	toolsText := "no tools"
	if len(h.Tools) > 0 {
		toolsText = strings.Join(h.Tools, ", ")
	}
	tools := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Render(toolsText)

	leftPart := lipgloss.JoinHorizontal(lipgloss.Center, logo, "  ", versionStyle)

	spacing := h.Width - lipgloss.Width(leftPart) - lipgloss.Width(tools) - 2
	if spacing < 1 {
		spacing = 1
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		leftPart,
		lipgloss.NewStyle().Width(spacing).Render(""),
		tools,
	)

	separator := lipgloss.NewStyle().
		Foreground(t.Border).
		Width(h.Width).
		Render(strings.Repeat("─", max(h.Width, 0)))

	return header + "\n" + separator
}
