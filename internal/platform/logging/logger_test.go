package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsAndTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("store").With("component", "team_store")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "create team failed", "team_name", "Lightning U12", "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "store" || entry.Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry: name=%s level=%s", entry.LoggerName, entry.Level)
	}

	fields := entry.ContextMap()
	if fields["component"] != "team_store" || fields["team_name"] != "Lightning U12" {
		t.Fatalf("missing key/value fields: %+v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("expected error field, got %+v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept: %+v", fields)
	}
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %+v", fields)
	}
}

func TestLogger_NilAndDefault(t *testing.T) {
	var logger *Logger
	logger.InfoContext(context.Background(), "ignored")
	if logger.With("k", "v") == nil || logger.Named("x") == nil {
		t.Fatalf("nil logger must derive a usable logger")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(FromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(nil) })

	logger.InfoContext(context.Background(), "routed to default")
	logger.DebugContext(context.Background(), "below level")
	logger.With("component", "persistence").WarnContext(context.Background(), "derived from default")
	if logs.Len() != 2 {
		t.Fatalf("nil logger must route to the default logger, got %d entries", logs.Len())
	}
	if logs.All()[1].ContextMap()["component"] != "persistence" {
		t.Fatalf("derived logger lost its fields: %+v", logs.All()[1].ContextMap())
	}
}
