package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorPrefix starts every failure returned as text by Client.Generate
const ErrorPrefix = "LLM Error: "

const tracerName = "github.com/simonyos/lfm/internal/llm"

// Client wraps a Provider with fixed sampling options. Its Generate never
// fails: errors come back as text the conversation can carry on with.
type Client struct {
	provider Provider
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the client logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for llm_call spans
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// NewClient creates a client that sends opts with every request
func NewClient(provider Provider, opts Options, options ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		opts:     opts,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Model returns the model name of the underlying provider
func (c *Client) Model() string {
	return c.provider.ModelName()
}

// Options returns the sampling options sent with every request
func (c *Client) Options() Options {
	return c.opts
}

// Generate sends the full history and returns the model's reply, or
// ErrorPrefix followed by the failure.
func (c *Client) Generate(ctx context.Context, history []Message) (text string) {
	ctx, span := c.tracer.Start(ctx, "llm_call", trace.WithAttributes(
		attribute.String("provider", c.provider.Name()),
		attribute.String("model", c.provider.ModelName()),
		attribute.Int("messages", len(history)),
	))
	start := time.Now()

	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Error("llm call failed", "model", c.provider.ModelName(), "error", err)
			text = ErrorPrefix + err.Error()
		} else {
			span.SetAttributes(attribute.Int("response_length", len(text)))
			c.logger.Debug("llm call", "model", c.provider.ModelName(), "duration", time.Since(start), "response_length", len(text))
		}
		span.End()
	}()

	text, err = c.provider.Generate(ctx, history, c.opts)
	return text
}
