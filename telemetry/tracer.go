package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"treasurehunt/game"
)

const instrumentationName = "treasurehunt/session"

// SessionTracer opens one span per game session and hangs every game event
// off it as a span event.
type SessionTracer struct {
	tracer trace.Tracer
}

// NewSessionTracer uses tp, or the global provider when tp is nil.
func NewSessionTracer(tp trace.TracerProvider) *SessionTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &SessionTracer{tracer: tp.Tracer(instrumentationName)}
}

func (t *SessionTracer) Start(ctx context.Context, code string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "treasure.session",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("session.code", code)),
	)
}

func RecordGameEvent(span trace.Span, ev game.Event) {
	if span == nil || !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("game.phase", ev.Phase.String()),
		attribute.Int("game.score", ev.Score),
	}
	if ev.Kind == game.TreasureSpawned || ev.Kind == game.TreasureCollected {
		attrs = append(attrs,
			attribute.Int("treasure.index", ev.Treasure.Index),
			attribute.String("treasure.variant", ev.Treasure.Variant.String()),
		)
	}
	span.AddEvent(ev.Kind.String(), trace.WithAttributes(attrs...))
}

func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
