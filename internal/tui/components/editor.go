package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/tui/theme"
)

// Editor is the message input. Up on the first line and Down on the last
// line step through messages sent earlier in the session.
type Editor struct {
	input textarea.Model
	width int

	sent   []string
	recall int    // position in sent, len(sent) while on the draft
	draft  string // unsent text kept while recalling
}

// NewEditor creates a focused editor
func NewEditor(width, height int) *Editor {
	in := textarea.New()
	in.Placeholder = "Ask something..."
	in.Prompt = "┃ "
	in.ShowLineNumbers = false
	in.CharLimit = 0
	in.FocusedStyle.CursorLine = lipgloss.NewStyle()
	in.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.Current.TextMuted)
	in.Focus()

	e := &Editor{input: in}
	e.SetSize(width, height)
	return e
}

// SetSize fits the editor and its border into width x height
func (e *Editor) SetSize(width, height int) {
	e.width = width
	e.input.SetWidth(max(width-6, 1))
	e.input.SetHeight(max(height-2, 1))
}

// Focus accepts input again
func (e *Editor) Focus() { e.input.Focus() }

// Blur stops accepting input
func (e *Editor) Blur() { e.input.Blur() }

// Value returns the current text, trimmed
func (e *Editor) Value() string {
	return strings.TrimSpace(e.input.Value())
}

// Submit returns the trimmed text, clears the editor and remembers the
// text for recall. Repeating the last message is stored once.
func (e *Editor) Submit() string {
	text := e.Value()
	e.input.Reset()
	e.draft = ""
	if text != "" && (len(e.sent) == 0 || e.sent[len(e.sent)-1] != text) {
		e.sent = append(e.sent, text)
	}
	e.recall = len(e.sent)
	return text
}

// Update handles recall keys and forwards the rest to the textarea
func (e *Editor) Update(msg tea.Msg) (*Editor, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyUp:
			if e.input.Line() == 0 && e.older() {
				return e, nil
			}
		case tea.KeyDown:
			if e.input.Line() == e.input.LineCount()-1 && e.newer() {
				return e, nil
			}
		}
	}

	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd
}

func (e *Editor) older() bool {
	if e.recall == 0 {
		return false
	}
	if e.recall == len(e.sent) {
		e.draft = e.input.Value()
	}
	e.recall--
	e.input.SetValue(e.sent[e.recall])
	return true
}

func (e *Editor) newer() bool {
	if e.recall >= len(e.sent) {
		return false
	}
	e.recall++
	if e.recall == len(e.sent) {
		e.input.SetValue(e.draft)
	} else {
		e.input.SetValue(e.sent[e.recall])
	}
	return true
}

// View renders the editor inside a rounded border, highlighted while focused
func (e *Editor) View() string {
	t := theme.Current
	border := t.Border
	if e.input.Focused() {
		border = t.BorderFocus
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(e.width - 2).
		Padding(0, 1).
		Render(e.input.View())
}
