package agent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simonyos/lfm/internal/llm"
	"github.com/simonyos/lfm/internal/tools"
)

const (
	// DefaultSystemPrompt is used when no tools and no prompt are configured
	DefaultSystemPrompt = "You are a helpful assistant."

	// DefaultMaxIterations bounds the generations of a single turn
	DefaultMaxIterations = 5

	// StuckMessage is returned when the bound is reached without a final answer
	StuckMessage = "Error: Agent got stuck in a loop and could not produce an answer."

	observationFormat = "<|tool_response_start|>%s<|tool_response_end|> (Use this result to answer the user's question)"
	catalogFormat     = "List of tools: <|tool_list_start|>%s<|tool_list_end|>"

	tracerName = "github.com/simonyos/lfm/internal/agent"
)

// directivePattern matches the first tool call in a model reply
var directivePattern = regexp.MustCompile(`(?s)<\|tool_call_start\|>\[(.*?)\]<\|tool_call_end\|>`)

// Generator produces the next assistant message for a history. It never
// fails; failures come back as text.
type Generator interface {
	Generate(ctx context.Context, history []llm.Message) string
}

// EventHandler receives callbacks during agent execution
type EventHandler interface {
	OnThinking()
	OnToolUse(call string)
	OnToolResult(call, result string)
}

// Agent holds one conversation with a model and an optional tool registry
type Agent struct {
	id            string
	client        Generator
	registry      *tools.Registry
	systemPrompt  string
	hasPrompt     bool
	maxIterations int
	singleShot    bool
	messages      []llm.Message
	handler       EventHandler
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option configures an Agent
type Option func(*Agent)

// WithRegistry enables tool use. Without a registry the agent is a plain chat.
func WithRegistry(r *tools.Registry) Option {
	return func(a *Agent) { a.registry = r }
}

// WithSystemPrompt sets the system prompt. With tools it precedes the catalog.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		if prompt != "" {
			a.systemPrompt = prompt
			a.hasPrompt = true
		}
	}
}

// WithMaxIterations bounds the number of generations per Chat call
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithSingleShot allows at most one tool round trip per Chat call. The
// generation after it is the answer, directive or not.
func WithSingleShot() Option {
	return func(a *Agent) { a.singleShot = true }
}

// WithEventHandler sets the callback handler for agent events
func WithEventHandler(h EventHandler) Option {
	return func(a *Agent) { a.handler = h }
}

// WithLogger sets the agent logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTracer sets the tracer used for agent_turn spans
func WithTracer(t trace.Tracer) Option {
	return func(a *Agent) {
		if t != nil {
			a.tracer = t
		}
	}
}

// New creates an agent whose history starts with the system message
func New(client Generator, opts ...Option) *Agent {
	a := &Agent{
		client:        client,
		systemPrompt:  DefaultSystemPrompt,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}

	if id, err := uuid.NewV7(); err == nil {
		a.id = id.String()
	} else {
		a.id = uuid.NewString()
	}
	a.logger = a.logger.With("agent", a.id)

	a.messages = []llm.Message{
		{Role: llm.RoleSystem, Content: a.buildSystemPrompt()},
	}
	return a
}

func (a *Agent) buildSystemPrompt() string {
	if a.registry == nil {
		return a.systemPrompt
	}

	catalog, err := a.registry.ToolsJSON()
	if err != nil {
		a.logger.Error("failed to build tool catalog", "error", err)
		catalog = "[]"
	}
	line := fmt.Sprintf(catalogFormat, catalog)
	if a.hasPrompt {
		return a.systemPrompt + "\n\n" + line
	}
	return line
}

// SetEventHandler sets the callback handler for agent events
func (a *Agent) SetEventHandler(h EventHandler) {
	a.handler = h
}

// ID returns the identifier of this conversation
func (a *Agent) ID() string {
	return a.id
}

// Tools returns the registry, or nil for a plain chat agent
func (a *Agent) Tools() *tools.Registry {
	return a.registry
}

// Chat runs one user turn and returns the final answer. It never fails: model
// and tool failures are carried as text, and an exhausted bound returns
// StuckMessage.
func (a *Agent) Chat(ctx context.Context, input string) string {
	ctx, span := a.tracer.Start(ctx, "agent_turn", trace.WithAttributes(
		attribute.String("agent.id", a.id),
		attribute.Bool("tools", a.registry != nil),
	))
	defer span.End()

	a.messages = append(a.messages, llm.Message{Role: llm.RoleUser, Content: input})

	limit := a.maxIterations
	if a.singleShot {
		limit = 2
	}

	toolUsed := false
	for i := 0; i < limit; i++ {
		if a.handler != nil {
			a.handler.OnThinking()
		}

		response := a.client.Generate(ctx, a.messages)
		a.logger.Debug("generation", "iteration", i+1, "response_length", len(response))

		call, found := ExtractCall(response)
		if !found || a.registry == nil || (a.singleShot && toolUsed) {
			a.messages = append(a.messages, llm.Message{Role: llm.RoleAssistant, Content: response})
			span.SetAttributes(attribute.Int("iterations", i+1), attribute.String("outcome", "answer"))
			return response
		}

		if a.handler != nil {
			a.handler.OnToolUse(call)
		}
		a.logger.Debug("tool call detected", "call", call)

		result := a.registry.Execute(ctx, call)

		if a.handler != nil {
			a.handler.OnToolResult(call, result)
		}

		a.messages = append(a.messages,
			llm.Message{Role: llm.RoleAssistant, Content: response},
			llm.Message{Role: llm.RoleUser, Content: Observation(result)},
		)
		toolUsed = true
	}

	a.logger.Warn("iteration bound reached", "max_iterations", limit)
	span.SetAttributes(attribute.Int("iterations", limit), attribute.String("outcome", "stuck"))
	return StuckMessage
}

// ExtractCall returns the text inside the first tool call directive in s
func ExtractCall(s string) (string, bool) {
	m := directivePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Observation wraps a tool result in the response delimiters
func Observation(result string) string {
	return fmt.Sprintf(observationFormat, result)
}

// History returns a copy of the conversation history
func (a *Agent) History() []llm.Message {
	return append([]llm.Message(nil), a.messages...)
}

// Reset clears the conversation history (keeps system prompt)
func (a *Agent) Reset() {
	a.messages = a.messages[:1]
}
