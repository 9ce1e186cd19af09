package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/simonyos/lfm/internal/tools"

type entry struct {
	desc ToolDescriptor
	fn   Func
}

// Registry manages tool registration and execution
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string // registration order, published as the catalog order

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for registration and execution events
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for tool_execute spans
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRegistry creates an empty tool registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register describes fn from its argument struct T, adds it to r and returns
// fn unchanged so it can still be called directly.
func Register[T, R any](r *Registry, name, doc string, fn func(context.Context, T) (R, error)) (func(context.Context, T) (R, error), error) {
	if fn == nil {
		return nil, fmt.Errorf("tool %s: nil function", name)
	}
	desc, err := Describe[T](name, doc)
	if err != nil {
		return nil, err
	}
	b, err := newBinder[T](desc)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	r.Add(desc, wrap(name, b, fn))
	return fn, nil
}

// MustRegister is like Register but panics on error
func MustRegister[T, R any](r *Registry, name, doc string, fn func(context.Context, T) (R, error)) func(context.Context, T) (R, error) {
	out, err := Register(r, name, doc, fn)
	if err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", name, err))
	}
	return out
}

// Add stores a described tool. A tool registered under an existing name
// replaces the previous one and keeps its catalog position.
func (r *Registry) Add(desc ToolDescriptor, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.Name]; exists {
		r.logger.Warn("tool re-registered, replacing previous definition", "tool", desc.Name)
	} else {
		r.order = append(r.order, desc.Name)
	}
	r.entries[desc.Name] = entry{desc: desc, fn: fn}
}

// Has reports whether a tool with the given name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names returns tool names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors returns the catalog in registration order
func (r *Registry) Descriptors() []ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].desc)
	}
	return defs
}

// ToolsJSON returns the catalog as a compact JSON array
func (r *Registry) ToolsJSON() (string, error) {
	b, err := json.Marshal(r.Descriptors())
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool catalog: %w", err)
	}
	return string(b), nil
}

// Execute parses callText as a single call and runs it. It never fails:
// any problem is reported as text starting with ErrorPrefix.
func (r *Registry) Execute(ctx context.Context, callText string) string {
	call, err := ParseCall(callText)
	if err != nil {
		r.logger.Debug("rejected tool call", "call", callText, "error", err)
		return ErrorPrefix + err.Error()
	}
	out, err := r.Invoke(ctx, *call)
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	return out
}

// Invoke runs a parsed call against the registered tools
func (r *Registry) Invoke(ctx context.Context, call Call) (out string, err error) {
	ctx, span := r.tracer.Start(ctx, "tool_execute", trace.WithAttributes(
		attribute.String("tool", call.Name),
		attribute.Int("args", len(call.Args)),
	))
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.Warn("tool error", "tool", call.Name, "duration", dur, "error", err)
		} else {
			span.SetAttributes(attribute.Int("result_length", len(out)))
			r.logger.Info("tool end", "tool", call.Name, "duration", dur)
		}
		span.End()
	}()

	r.mu.RLock()
	e, ok := r.entries[call.Name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
	}

	args, err := checkArgs(e.desc, call.Args)
	if err != nil {
		return "", err
	}

	r.logger.Info("tool start", "tool", call.Name)
	return run(ctx, e, args)
}

// run invokes the tool body, converting panics and body errors into ExecutionError
func run(ctx context.Context, e entry, args map[string]any) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = &ExecutionError{Tool: e.desc.Name, Err: &panicError{p: p}}
		}
	}()

	out, err = e.fn(ctx, args)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			return "", err
		}
		return "", &ExecutionError{Tool: e.desc.Name, Err: err}
	}
	return out, nil
}

// checkArgs matches call arguments against the descriptor and applies defaults
func checkArgs(desc ToolDescriptor, callArgs []Arg) (map[string]any, error) {
	args := make(map[string]any, len(desc.Parameters))
	for _, a := range callArgs {
		if _, ok := desc.Param(a.Key); !ok {
			return nil, &ArgumentError{Tool: desc.Name, Argument: a.Key, Reason: "is not a parameter"}
		}
		if _, dup := args[a.Key]; dup {
			return nil, &ArgumentError{Tool: desc.Name, Argument: a.Key, Reason: "given more than once"}
		}
		args[a.Key] = a.Value
	}

	for _, p := range desc.Parameters {
		if _, ok := args[p.Name]; ok {
			continue
		}
		if p.Required {
			return nil, &ArgumentError{Tool: desc.Name, Argument: p.Name, Reason: "is required"}
		}
		if p.Default != nil {
			args[p.Name] = p.Default
		}
	}
	return args, nil
}
