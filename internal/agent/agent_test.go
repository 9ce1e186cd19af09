package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/simonyos/lfm/internal/llm"
	"github.com/simonyos/lfm/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockGenerator replays scripted responses and records every history it saw
type MockGenerator struct {
	responses []string
	fallback  string
	calls     int
	seen      [][]llm.Message
}

func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{responses: responses, fallback: "final response"}
}

func (m *MockGenerator) Generate(_ context.Context, history []llm.Message) string {
	m.seen = append(m.seen, append([]llm.Message(nil), history...))
	m.calls++
	if m.calls > len(m.responses) {
		return m.fallback
	}
	return m.responses[m.calls-1]
}

// MockEventHandler records events for testing
type MockEventHandler struct {
	ThinkingCalls int
	ToolUseCalls  []string
	ToolResults   []string
}

func (h *MockEventHandler) OnThinking() {
	h.ThinkingCalls++
}

func (h *MockEventHandler) OnToolUse(call string) {
	h.ToolUseCalls = append(h.ToolUseCalls, call)
}

func (h *MockEventHandler) OnToolResult(call, result string) {
	h.ToolResults = append(h.ToolResults, result)
}

type weatherArgs struct {
	City string `json:"city"`
}

func newRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	tools.MustRegister(reg, "get_weather", "Get the weather for a city.", func(_ context.Context, a weatherArgs) (string, error) {
		return "Weather in " + a.City + ": Sunny, 20°C", nil
	})
	tools.MustRegister(reg, "add", "Add two numbers.", func(_ context.Context, a struct {
		A int `json:"a"`
		B int `json:"b"`
	}) (int, error) {
		return a.A + a.B, nil
	})
	return reg
}

func directive(call string) string {
	return "<|tool_call_start|>[" + call + "]<|tool_call_end|>"
}

func TestNew_SystemPrompt(t *testing.T) {
	t.Run("plain chat", func(t *testing.T) {
		a := New(NewMockGenerator())
		h := a.History()
		require.Len(t, h, 1)
		assert.Equal(t, llm.RoleSystem, h[0].Role)
		assert.Equal(t, "You are a helpful assistant.", h[0].Content)
		assert.Nil(t, a.Tools())
	})

	t.Run("custom prompt without tools", func(t *testing.T) {
		a := New(NewMockGenerator(), WithSystemPrompt("Talk like a pirate."))
		assert.Equal(t, "Talk like a pirate.", a.History()[0].Content)
	})

	t.Run("tool catalog", func(t *testing.T) {
		reg := newRegistry(t)
		a := New(NewMockGenerator(), WithRegistry(reg))

		content := a.History()[0].Content
		require.True(t, strings.HasPrefix(content, "List of tools: <|tool_list_start|>"), content)
		require.True(t, strings.HasSuffix(content, "<|tool_list_end|>"), content)

		payload := strings.TrimSuffix(strings.TrimPrefix(content, "List of tools: <|tool_list_start|>"), "<|tool_list_end|>")
		var catalog []map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &catalog))
		require.Len(t, catalog, 2)
		assert.Equal(t, "get_weather", catalog[0]["name"])
		assert.Equal(t, "add", catalog[1]["name"])
	})

	t.Run("persona before catalog", func(t *testing.T) {
		a := New(NewMockGenerator(), WithRegistry(newRegistry(t)), WithSystemPrompt("Be brief."))
		content := a.History()[0].Content
		assert.True(t, strings.HasPrefix(content, "Be brief.\n\nList of tools: "), content)
	})
}

func TestChat_NoToolCall(t *testing.T) {
	gen := NewMockGenerator("Hello! How can I help?")
	a := New(gen, WithRegistry(newRegistry(t)))

	out := a.Chat(context.Background(), "hi")

	assert.Equal(t, "Hello! How can I help?", out)
	h := a.History()
	require.Len(t, h, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hi"}, h[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Hello! How can I help?"}, h[2])
	assert.Equal(t, 1, gen.calls)
}

func TestChat_ToolRoundTrip(t *testing.T) {
	first := "Let me check. " + directive("get_weather(city='Paris')")
	gen := NewMockGenerator(first, "It is sunny in Paris.")
	handler := &MockEventHandler{}
	a := New(gen, WithRegistry(newRegistry(t)), WithEventHandler(handler))

	out := a.Chat(context.Background(), "Weather in Paris?")

	assert.Equal(t, "It is sunny in Paris.", out)
	h := a.History()
	require.Len(t, h, 5)
	assert.Equal(t, llm.RoleSystem, h[0].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Weather in Paris?"}, h[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: first}, h[2])
	assert.Equal(t, llm.Message{
		Role:    llm.RoleUser,
		Content: "<|tool_response_start|>Weather in Paris: Sunny, 20°C<|tool_response_end|> (Use this result to answer the user's question)",
	}, h[3])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "It is sunny in Paris."}, h[4])

	// the second generation saw the observation
	require.Len(t, gen.seen, 2)
	assert.Len(t, gen.seen[1], 4)

	assert.Equal(t, 2, handler.ThinkingCalls)
	assert.Equal(t, []string{"get_weather(city='Paris')"}, handler.ToolUseCalls)
	assert.Equal(t, []string{"Weather in Paris: Sunny, 20°C"}, handler.ToolResults)
}

func TestChat_FirstDirectiveOnly(t *testing.T) {
	reply := directive("add(a=1, b=2)") + " and " + directive("add(a=10, b=20)")
	handler := &MockEventHandler{}
	a := New(NewMockGenerator(reply, "3"), WithRegistry(newRegistry(t)), WithEventHandler(handler))

	a.Chat(context.Background(), "sum")

	assert.Equal(t, []string{"add(a=1, b=2)"}, handler.ToolUseCalls)
	assert.Equal(t, []string{"3"}, handler.ToolResults)
}

func TestChat_MultilineDirective(t *testing.T) {
	reply := "<|tool_call_start|>[add(a=1,\n b=2)]<|tool_call_end|>"
	handler := &MockEventHandler{}
	a := New(NewMockGenerator(reply, "done"), WithRegistry(newRegistry(t)), WithEventHandler(handler))

	assert.Equal(t, "done", a.Chat(context.Background(), "sum"))
	assert.Equal(t, []string{"3"}, handler.ToolResults)
}

func TestChat_ToolFailureIsObservation(t *testing.T) {
	gen := NewMockGenerator(directive("__import__('os').system('rm -rf /')"), "Sorry, I can't do that.")
	a := New(gen, WithRegistry(newRegistry(t)))

	out := a.Chat(context.Background(), "hack")

	assert.Equal(t, "Sorry, I can't do that.", out)
	h := a.History()
	require.Len(t, h, 5)
	assert.Contains(t, h[3].Content, "<|tool_response_start|>Tool Execution Error: ")
}

func TestChat_Exhaustion(t *testing.T) {
	loop := directive("add(a=1, b=1)")
	gen := NewMockGenerator()
	gen.fallback = loop
	a := New(gen, WithRegistry(newRegistry(t)), WithMaxIterations(3))

	out := a.Chat(context.Background(), "loop forever")

	assert.Equal(t, "Error: Agent got stuck in a loop and could not produce an answer.", out)
	assert.Equal(t, 3, gen.calls)
	// system + user + 3 * (assistant + observation)
	assert.Len(t, a.History(), 8)
}

func TestChat_DefaultBound(t *testing.T) {
	gen := NewMockGenerator()
	gen.fallback = directive("add(a=1, b=1)")
	a := New(gen, WithRegistry(newRegistry(t)))

	assert.Equal(t, StuckMessage, a.Chat(context.Background(), "loop"))
	assert.Equal(t, DefaultMaxIterations, gen.calls)
}

func TestChat_SingleShot(t *testing.T) {
	gen := NewMockGenerator(directive("add(a=1, b=2)"), directive("add(a=3, b=4)"))
	handler := &MockEventHandler{}
	a := New(gen, WithRegistry(newRegistry(t)), WithSingleShot(), WithEventHandler(handler))

	out := a.Chat(context.Background(), "sum")

	assert.Equal(t, directive("add(a=3, b=4)"), out)
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, handler.ToolUseCalls, 1)
	assert.Len(t, a.History(), 5)
}

func TestChat_NoRegistryIgnoresDirectives(t *testing.T) {
	reply := directive("add(a=1, b=2)")
	gen := NewMockGenerator(reply)
	a := New(gen)

	assert.Equal(t, reply, a.Chat(context.Background(), "sum"))
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, a.History(), 3)
}

func TestChat_ModelErrorIsAnswer(t *testing.T) {
	gen := NewMockGenerator("LLM Error: connection refused")
	a := New(gen, WithRegistry(newRegistry(t)))

	assert.Equal(t, "LLM Error: connection refused", a.Chat(context.Background(), "hi"))
	assert.Len(t, a.History(), 3)
}

func TestHistoryIsCopy(t *testing.T) {
	a := New(NewMockGenerator("ok"))
	a.Chat(context.Background(), "hi")

	h := a.History()
	h[0].Content = "tampered"

	assert.Equal(t, DefaultSystemPrompt, a.History()[0].Content)
	assert.Len(t, a.History(), 3)
}

func TestReset(t *testing.T) {
	a := New(NewMockGenerator("one", "two"), WithRegistry(newRegistry(t)))
	system := a.History()[0]

	a.Chat(context.Background(), "first")
	a.Reset()

	h := a.History()
	require.Len(t, h, 1)
	assert.Equal(t, system, h[0])

	assert.Equal(t, "two", a.Chat(context.Background(), "second"))
	assert.Len(t, a.History(), 3)
}

func TestID(t *testing.T) {
	a := New(NewMockGenerator())
	b := New(NewMockGenerator())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestExtractCall(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{name: "none", text: "just text", found: false},
		{name: "simple", text: directive("f()"), want: "f()", found: true},
		{name: "surrounded", text: "a " + directive("g(x=1)") + " b", want: "g(x=1)", found: true},
		{name: "missing end", text: "<|tool_call_start|>[f()]", found: false},
		{name: "missing brackets", text: "<|tool_call_start|>f()<|tool_call_end|>", found: false},
		{name: "brackets inside", text: directive("f(s='[x]')"), want: "f(s='[x]')", found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractCall(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChat_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reg := tools.NewRegistry(tools.WithTracer(tp.Tracer("tools")))
	tools.MustRegister(reg, "add", "Add.", func(_ context.Context, a struct {
		A int `json:"a"`
		B int `json:"b"`
	}) (int, error) {
		return a.A + a.B, nil
	})

	a := New(NewMockGenerator(directive("add(a=1, b=2)"), "3"),
		WithRegistry(reg), WithTracer(tp.Tracer("agent")))
	a.Chat(context.Background(), "sum")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "tool_execute", spans[0].Name())
	assert.Equal(t, "agent_turn", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID(), "tool span is a child of the turn")
}
