package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOpenAIBaseURL points at a llama.cpp server on its default port
const DefaultOpenAIBaseURL = "http://localhost:8080/v1"

// OpenAI implements Provider for OpenAI-compatible chat completion servers
// such as llama.cpp, LM Studio or vLLM
type OpenAI struct {
	APIKey  string // optional for local servers
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAI API request/response types
type openAIRequest struct {
	Model             string          `json:"model"`
	Messages          []openAIMessage `json:"messages"`
	Stream            bool            `json:"stream"`
	Temperature       float64         `json:"temperature,omitempty"`
	TopP              float64         `json:"top_p,omitempty"`
	MinP              float64         `json:"min_p,omitempty"`
	RepetitionPenalty float64         `json:"repetition_penalty,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int           `json:"index"`
		Message openAIMessage `json:"message"`
		// FinishReason is "stop" or "length"
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAI creates a new OpenAI-compatible provider. An empty baseURL selects DefaultOpenAIBaseURL.
func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAI{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: DefaultTimeout,
	}
}

// convertMessages converts internal messages to OpenAI format
func (o *OpenAI) convertMessages(messages []Message) []openAIMessage {
	result := make([]openAIMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, openAIMessage(msg))
	}
	return result
}

// Generate calls the chat completions endpoint and returns the response
func (o *OpenAI) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := openAIRequest{
		Model:             o.Model,
		Messages:          o.convertMessages(messages),
		Stream:            false,
		Temperature:       opts.Temperature,
		TopP:              opts.TopP,
		MinP:              opts.MinP,
		RepetitionPenalty: opts.RepeatPenalty,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}

	client := &http.Client{Timeout: o.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if openAIResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return openAIResp.Choices[0].Message.Content, nil
}

// Name returns the provider name
func (o *OpenAI) Name() string { return ProviderOpenAI }

// ModelName returns the model being used
func (o *OpenAI) ModelName() string {
	return o.Model
}
