package llm

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Options are the sampling parameters sent with every request.
// Zero values are left to the server's defaults.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	MinP          float64 `json:"min_p,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

// DefaultOptions returns the sampling parameters tuned for small tool-calling models
func DefaultOptions() Options {
	return Options{
		Temperature:   0.3,
		MinP:          0.15,
		RepeatPenalty: 1.05,
	}
}
