package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/agent"
	"github.com/simonyos/lfm/internal/tui/components"
	"github.com/simonyos/lfm/internal/tui/theme"
)

// Version is shown in the header
const Version = "0.1.0"

const (
	headerHeight = 2
	statusHeight = 2
	editorHeight = 5
)

const helpText = `Commands:
  /reset  start a new conversation
  /clear  clear the screen, keep the conversation
  /tools  list enabled tools
  /quit   leave`

// responseMsg carries the result of one agent turn
type responseMsg struct {
	answer string
	tools  []components.Message
}

// toolRecorder collects tool activity during a turn
type toolRecorder struct {
	mu    sync.Mutex
	calls []components.Message
}

func (r *toolRecorder) OnThinking() {}

func (r *toolRecorder) OnToolUse(string) {}

func (r *toolRecorder) OnToolResult(call, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, components.Message{Role: components.RoleTool, Call: call, Content: result})
}

func (r *toolRecorder) drain() []components.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}

// Model is the main TUI model
type Model struct {
	ctx      context.Context
	agent    *agent.Agent
	recorder *toolRecorder

	// Components
	header   *components.Header
	messages *components.Messages
	editor   *components.Editor
	status   *components.Status
	spinner  spinner.Model

	// State
	width    int
	height   int
	ready    bool
	thinking bool
}

// New creates a new TUI model driving ag
func New(ctx context.Context, ag *agent.Agent, modelName string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	recorder := &toolRecorder{}
	ag.SetEventHandler(recorder)

	var toolNames []string
	if reg := ag.Tools(); reg != nil {
		toolNames = reg.Names()
	}

	return Model{
		ctx:      ctx,
		agent:    ag,
		recorder: recorder,
		header:   components.NewHeader(80, Version, toolNames),
		status:   components.NewStatus(80, modelName),
		spinner:  sp,
	}
}

func welcomeMessage() string {
	return "\n  Ask a question to start. Type /help for commands.\n"
}

// Init initializes the TUI
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+l":
			if m.messages != nil {
				m.messages.Clear()
			}
			return m, nil

		case "enter":
			if m.editor == nil || m.thinking {
				return m, nil
			}
			input := m.editor.Submit()
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.messages.AddMessage(components.Message{Role: components.RoleUser, Content: input})
			m.thinking = true
			m.status.SetThinking(true)
			m.editor.Blur()
			return m, tea.Batch(m.spinner.Tick, m.sendMessage(input))

		case "pgup", "pgdown":
			if m.messages != nil {
				vp := m.messages.GetViewport()
				var cmd tea.Cmd
				*vp, cmd = vp.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		messagesHeight := msg.Height - headerHeight - statusHeight - editorHeight

		if !m.ready {
			m.messages = components.NewMessages(msg.Width, messagesHeight)
			m.messages.SetWelcome(welcomeMessage())
			m.editor = components.NewEditor(msg.Width, editorHeight)
			m.ready = true
		} else {
			m.messages.SetSize(msg.Width, messagesHeight)
			m.editor.SetSize(msg.Width, editorHeight)
		}

		m.header.SetWidth(msg.Width)
		m.status.SetWidth(msg.Width)

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case responseMsg:
		m.thinking = false
		m.status.SetThinking(false)
		m.editor.Focus()

		for _, call := range msg.tools {
			m.messages.AddMessage(call)
		}
		m.status.SetMessage("")
		if n := len(msg.tools); n > 0 {
			m.status.SetMessage(fmt.Sprintf("%d tool call(s) last turn · /help for commands", n))
		}
		role := components.RoleAssistant
		if msg.answer == agent.StuckMessage {
			role = components.RoleError
		}
		m.messages.AddMessage(components.Message{Role: role, Content: msg.answer})
	}

	// Update editor if not thinking - only pass key messages
	if !m.thinking && m.editor != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// sendMessage runs one agent turn off the UI goroutine
func (m Model) sendMessage(content string) tea.Cmd {
	return func() tea.Msg {
		answer := m.agent.Chat(m.ctx, content)
		return responseMsg{answer: answer, tools: m.recorder.drain()}
	}
}

// handleCommand processes slash commands
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "/help":
		m.messages.AddMessage(components.Message{Role: components.RoleSystem, Content: helpText})

	case "/clear":
		m.messages.Clear()

	case "/reset":
		m.messages.Clear()
		m.agent.Reset()
		m.messages.AddMessage(components.Message{Role: components.RoleSystem, Content: "Conversation reset."})

	case "/tools":
		content := "No tools enabled."
		if reg := m.agent.Tools(); reg != nil && reg.Len() > 0 {
			var sb strings.Builder
			sb.WriteString("Enabled tools:")
			for _, d := range reg.Descriptors() {
				sb.WriteString("\n  " + d.Name + " - " + d.Description)
			}
			content = sb.String()
		}
		m.messages.AddMessage(components.Message{Role: components.RoleSystem, Content: content})

	case "/quit", "/exit", "/q":
		return m, tea.Quit

	default:
		m.messages.AddMessage(components.Message{
			Role:    components.RoleError,
			Content: "Unknown command: " + cmd + "\nType /help for available commands.",
		})
	}
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	t := theme.Current
	messagesHeight := m.height - headerHeight - statusHeight - editorHeight

	messagesView := m.messages.View()
	if m.thinking {
		thinkingStyle := lipgloss.NewStyle().Foreground(t.Primary)
		messagesView += "\n" + thinkingStyle.Render(m.spinner.View()+" Thinking...")
	}
	messagesView = lipgloss.NewStyle().Height(messagesHeight).Render(messagesView)

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		messagesView,
		m.editor.View(),
		m.status.View(),
	)

	return lipgloss.NewStyle().
		Background(t.Background).
		Width(m.width).
		Height(m.height).
		Render(view)
}

// Run starts the full-screen program and blocks until it exits
func Run(ctx context.Context, ag *agent.Agent, modelName string) error {
	p := tea.NewProgram(
		New(ctx, ag, modelName),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
