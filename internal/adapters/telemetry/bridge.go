// Package telemetry adapts OpenTelemetry to the tracing ports.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
)

// LogBridge implements sdktrace.SpanProcessor by reporting every finished
// span and its duration through a logger.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart does nothing; spans are reported once they end.
func (b *LogBridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span's name, duration and attributes.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	msg := fmt.Sprintf("%s took %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond))
	for _, kv := range s.Attributes() {
		msg += fmt.Sprintf(" %s=%s", kv.Key, kv.Value.Emit())
	}

	if s.Status().Code == codes.Error {
		b.logger.Error(zerr.With(zerr.New(msg), "error", s.Status().Description))
		return
	}
	b.logger.Info(msg)
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(context.Context) error {
	return nil
}

// Install registers a global tracer provider that reports spans through bridge.
// The returned function shuts the provider down.
func Install(bridge sdktrace.SpanProcessor) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
