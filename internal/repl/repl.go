// Package repl runs the line-oriented chat session on a terminal or pipe.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonyos/lfm/internal/llm"
	"github.com/simonyos/lfm/internal/tui/theme"
)

// Prompt is printed before each line of input
const Prompt = "You: "

// maxEcho bounds how much of a tool result is echoed
const maxEcho = 200

// Chatter is the conversation the REPL drives
type Chatter interface {
	Chat(ctx context.Context, input string) string
	Reset()
	History() []llm.Message
}

// Options configures a REPL
type Options struct {
	In       io.Reader // stdin when nil
	Out      io.Writer // stdout when nil
	Err      io.Writer // stderr when nil; tool activity and errors go here
	Markdown bool      // render answers as markdown
	Model    string    // shown in the banner
}

// REPL reads user lines, hands them to the chatter and prints each answer
type REPL struct {
	chat     Chatter
	in       io.Reader
	out      io.Writer
	err      io.Writer
	model    string
	renderer *glamour.TermRenderer

	toolStyle   lipgloss.Style
	resultStyle lipgloss.Style
	errorStyle  lipgloss.Style
	bannerStyle lipgloss.Style
}

// New creates a REPL over chat
func New(chat Chatter, opts Options) *REPL {
	r := &REPL{
		chat:  chat,
		in:    opts.In,
		out:   opts.Out,
		err:   opts.Err,
		model: opts.Model,
	}
	if r.in == nil {
		r.in = os.Stdin
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.err == nil {
		r.err = os.Stderr
	}

	if opts.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			r.renderer = renderer
		}
	}

	t := theme.Current
	r.toolStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	r.resultStyle = lipgloss.NewStyle().Foreground(t.TextMuted)
	r.errorStyle = lipgloss.NewStyle().Foreground(t.Error)
	r.bannerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	return r
}

// Run reads lines until exit, quit, EOF or cancellation
func (r *REPL) Run(ctx context.Context) error {
	banner := "lfm chat"
	if r.model != "" {
		banner += " · " + r.model
	}
	fmt.Fprintln(r.err, r.bannerStyle.Render(banner))
	fmt.Fprintln(r.err, r.resultStyle.Render("Type 'exit' or 'quit' to leave, /reset to start over."))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}
		r.handle(ctx, line)
	}
}

func isExit(line string) bool {
	l := strings.ToLower(line)
	return l == "exit" || l == "quit"
}

// handle processes one line; a panic is reported and the session goes on
func (r *REPL) handle(ctx context.Context, line string) {
	defer func() {
		if p := recover(); p != nil {
			fmt.Fprintln(r.err, r.errorStyle.Render(fmt.Sprintf("Error: %v", p)))
		}
	}()

	switch strings.ToLower(line) {
	case "/reset":
		r.chat.Reset()
		fmt.Fprintln(r.err, r.resultStyle.Render("Conversation reset."))
		return
	case "/history":
		r.printHistory()
		return
	}

	answer := r.chat.Chat(ctx, line)
	fmt.Fprintf(r.out, "\n%s\n", r.render(answer))
}

func (r *REPL) render(answer string) string {
	if r.renderer == nil {
		return answer
	}
	out, err := r.renderer.Render(answer)
	if err != nil {
		return answer
	}
	return strings.TrimRight(out, "\n")
}

func (r *REPL) printHistory() {
	for i, m := range r.chat.History() {
		fmt.Fprintf(r.out, "[%d] %s: %s\n", i, m.Role, m.Content)
	}
}

// OnThinking is part of agent.EventHandler
func (r *REPL) OnThinking() {}

// OnToolUse echoes the call being executed
func (r *REPL) OnToolUse(call string) {
	fmt.Fprintln(r.err, r.toolStyle.Render("→ "+call))
}

// OnToolResult echoes a shortened result
func (r *REPL) OnToolResult(_ string, result string) {
	fmt.Fprintln(r.err, r.resultStyle.Render("  "+truncate(result, maxEcho)))
}

func truncate(s string, n int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}
