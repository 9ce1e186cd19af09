package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/simonyos/lfm/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChat struct {
	inputs  []string
	resets  int
	history []llm.Message
	answer  func(string) string
}

func (f *fakeChat) Chat(_ context.Context, input string) string {
	f.inputs = append(f.inputs, input)
	if f.answer != nil {
		return f.answer(input)
	}
	return "echo: " + input
}

func (f *fakeChat) Reset() { f.resets++ }

func (f *fakeChat) History() []llm.Message { return f.history }

func run(t *testing.T, chat Chatter, input string) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	r := New(chat, Options{In: strings.NewReader(input), Out: &out, Err: &errOut})
	require.NoError(t, r.Run(context.Background()))
	return out.String(), errOut.String()
}

func TestRun_ChatAndExit(t *testing.T) {
	chat := &fakeChat{}
	out, _ := run(t, chat, "hello\n\n   \nhow are you?\nexit\nnever read\n")

	assert.Equal(t, []string{"hello", "how are you?"}, chat.inputs)
	assert.Contains(t, out, "You: ")
	assert.Contains(t, out, "\necho: hello\n")
	assert.Contains(t, out, "\necho: how are you?\n")
}

func TestRun_ExitWords(t *testing.T) {
	for _, word := range []string{"exit", "quit", "EXIT", "Quit"} {
		t.Run(word, func(t *testing.T) {
			chat := &fakeChat{}
			run(t, chat, word+"\nhello\n")
			assert.Empty(t, chat.inputs)
		})
	}
}

func TestRun_EOF(t *testing.T) {
	chat := &fakeChat{}
	out, _ := run(t, chat, "one")

	assert.Equal(t, []string{"one"}, chat.inputs)
	assert.True(t, strings.HasSuffix(out, "You: \n"), "prompt is closed with a newline on EOF: %q", out)
}

func TestRun_Commands(t *testing.T) {
	chat := &fakeChat{history: []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "hi"},
	}}
	out, errOut := run(t, chat, "/reset\n/history\nquit\n")

	assert.Equal(t, 1, chat.resets)
	assert.Empty(t, chat.inputs)
	assert.Contains(t, errOut, "Conversation reset.")
	assert.Contains(t, out, "[0] system: sys\n")
	assert.Contains(t, out, "[1] user: hi\n")
}

func TestRun_RecoversPanics(t *testing.T) {
	chat := &fakeChat{answer: func(in string) string {
		if in == "boom" {
			panic("something broke")
		}
		return "fine"
	}}
	out, errOut := run(t, chat, "boom\nagain\n")

	assert.Contains(t, errOut, "Error: something broke")
	assert.Contains(t, out, "\nfine\n")
	assert.Equal(t, []string{"boom", "again"}, chat.inputs)
}

func TestRun_CancelledContext(t *testing.T) {
	chat := &fakeChat{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(chat, Options{In: strings.NewReader("hello\n"), Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	require.NoError(t, r.Run(ctx))
	assert.Empty(t, chat.inputs)
}

func TestToolEcho(t *testing.T) {
	var errOut bytes.Buffer
	r := New(&fakeChat{}, Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Err: &errOut})

	r.OnThinking()
	r.OnToolUse("get_weather(city='Paris')")
	r.OnToolResult("get_weather(city='Paris')", strings.Repeat("x", 500))

	assert.Contains(t, errOut.String(), "get_weather(city='Paris')")
	assert.Contains(t, errOut.String(), strings.Repeat("x", maxEcho)+"…")
	assert.NotContains(t, errOut.String(), strings.Repeat("x", maxEcho+1))
}

func TestRun_Markdown(t *testing.T) {
	chat := &fakeChat{answer: func(string) string { return "# Title\n\nSome **bold** text." }}
	var out bytes.Buffer
	r := New(chat, Options{In: strings.NewReader("hi\n"), Out: &out, Err: &bytes.Buffer{}, Markdown: true})
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "Title")
	assert.NotContains(t, out.String(), "**bold**")
}
