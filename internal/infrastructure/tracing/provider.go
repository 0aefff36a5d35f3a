// Package tracing registra el TracerProvider del SDK de OpenTelemetry y vuelca los spans terminados al log.
package tracing

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider construye un TracerProvider que registra cada span terminado en log.
// Los spans con error salen en warn; el resto en debug.
func NewProvider(log zerolog.Logger, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithSpanProcessor(&logProcessor{log: log})}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// Install registra el provider como global y devuelve la función de cierre.
func Install(tp *sdktrace.TracerProvider) func(context.Context) error {
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

type logProcessor struct {
	log zerolog.Logger
}

var _ sdktrace.SpanProcessor = (*logProcessor)(nil)

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	ev := p.log.Debug()
	if s.Status().Code == codes.Error {
		ev = p.log.Warn().Str("error", s.Status().Description)
	}
	ev = ev.
		Str("span", s.Name()).
		Str("trace_id", s.SpanContext().TraceID().String()).
		Dur("duration", s.EndTime().Sub(s.StartTime()))
	for _, kv := range s.Attributes() {
		ev = withAttr(ev, kv)
	}
	ev.Msg("span")
}

func (p *logProcessor) Shutdown(context.Context) error   { return nil }
func (p *logProcessor) ForceFlush(context.Context) error { return nil }

func withAttr(ev *zerolog.Event, kv attribute.KeyValue) *zerolog.Event {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.BOOL:
		return ev.Bool(key, kv.Value.AsBool())
	case attribute.INT64:
		return ev.Int64(key, kv.Value.AsInt64())
	case attribute.FLOAT64:
		return ev.Float64(key, kv.Value.AsFloat64())
	default:
		return ev.Str(key, kv.Value.Emit())
	}
}
