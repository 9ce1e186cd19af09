package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/tools"
	"github.com/simonyos/lfm/internal/tui/theme"
)

// Message roles rendered by Messages
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
	RoleError     = "error"
)

const maxResultLen = 300

// Message represents a chat message
type Message struct {
	Role    string
	Content string
	Call    string // tool call text, for RoleTool
}

// Messages is the scrollable message list component
type Messages struct {
	viewport viewport.Model
	messages []Message
	renderer *glamour.TermRenderer
	width    int
	height   int
	welcome  string
}

func newRenderer(width int) *glamour.TermRenderer {
	// Use dark style explicitly to avoid terminal color queries
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(width-10, 20)),
	)
	return renderer
}

// NewMessages creates a new messages component
func NewMessages(width, height int) *Messages {
	return &Messages{
		viewport: viewport.New(width, height),
		renderer: newRenderer(width),
		width:    width,
		height:   height,
	}
}

// SetSize updates the component dimensions
func (m *Messages) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.renderer = newRenderer(width)
	m.updateContent()
}

// AddMessage adds a new message
func (m *Messages) AddMessage(msg Message) {
	m.messages = append(m.messages, msg)
	m.updateContent()
}

// Messages returns the messages shown so far
func (m *Messages) Messages() []Message {
	return m.messages
}

// Clear removes all messages
func (m *Messages) Clear() {
	m.messages = nil
	m.updateContent()
}

// GetViewport returns the viewport for handling scroll input
func (m *Messages) GetViewport() *viewport.Model {
	return &m.viewport
}

// SetWelcome sets the text shown while there are no messages
func (m *Messages) SetWelcome(welcome string) {
	m.welcome = welcome
	m.updateContent()
}

func (m *Messages) markdown(s string) string {
	if m.renderer == nil {
		return s
	}
	if r, err := m.renderer.Render(s); err == nil {
		return strings.TrimSpace(r)
	}
	return s
}

// updateContent rebuilds the viewport content
func (m *Messages) updateContent() {
	t := theme.Current
	var sb strings.Builder
	contentWidth := m.width - 4

	if len(m.messages) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Italic(true).Render(m.welcome))
		m.viewport.SetContent(sb.String())
		return
	}

	body := lipgloss.NewStyle().
		Foreground(t.Text).
		PaddingLeft(2).
		Width(contentWidth)

	for _, msg := range m.messages {
		switch msg.Role {
		case RoleUser:
			sb.WriteString(lipgloss.NewStyle().Foreground(t.Info).Bold(true).Render("● You") + "\n")
			sb.WriteString(body.Render(msg.Content) + "\n\n")

		case RoleAssistant:
			sb.WriteString(lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("◆ lfm") + "\n")
			sb.WriteString(body.Render(m.markdown(msg.Content)) + "\n\n")

		case RoleTool:
			icon, color := "✓", t.Success
			if strings.HasPrefix(msg.Content, tools.ErrorPrefix) {
				icon, color = "✗", t.Error
			}
			sb.WriteString("  " + lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon) + " ")
			sb.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true).Render(msg.Call) + "\n")

			result := msg.Content
			if len(result) > maxResultLen {
				result = result[:maxResultLen] + " ⋯ (truncated)"
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(t.TextMuted).
				PaddingLeft(4).
				Width(max(contentWidth-6, 10)).
				Render(result) + "\n\n")

		case RoleSystem:
			sb.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Italic(true).Render("ℹ "+msg.Content) + "\n\n")

		case RoleError:
			sb.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render("✗ "+msg.Content) + "\n\n")
		}
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

// View renders the messages
func (m *Messages) View() string {
	return m.viewport.View()
}
