// Package logging sets up structured logging and tracing for the process.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options controls Setup
type Options struct {
	// Verbose logs at INFO; otherwise only errors are shown
	Verbose bool
	// Debug lowers the level to DEBUG, implies Verbose
	Debug bool
	// Writer receives log records, stderr when nil
	Writer io.Writer
	// TraceWriter receives finished spans as JSON. Tracing stays a no-op when nil.
	TraceWriter io.Writer
}

// Level returns the slog level for the options
func (o Options) Level() slog.Level {
	switch {
	case o.Debug:
		return slog.LevelDebug
	case o.Verbose:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

// Setup builds the process logger, installs it as slog.Default and, when a
// trace writer is given, registers a global tracer provider exporting to it.
// The returned function flushes and stops the tracer provider.
func Setup(opts Options) (*slog.Logger, func(context.Context) error, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level()}))
	slog.SetDefault(logger)

	noop := func(context.Context) error { return nil }
	if opts.TraceWriter == nil {
		return logger, noop, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(opts.TraceWriter))
	if err != nil {
		return logger, noop, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return logger, tp.Shutdown, nil
}
