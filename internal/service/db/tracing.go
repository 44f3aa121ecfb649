package database

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ServiceTracerName is the name used for the database service tracer
	ServiceTracerName = "github.com/festquest/festquest-server/service/db"
)

// Custom attribute keys for business context
const (
	AttrDepartamento = attribute.Key("festquest.departamento")
	AttrMunicipioID  = attribute.Key("festquest.municipio_id")
	AttrFestivalID   = attribute.Key("festquest.festival_id")
	AttrPage         = attribute.Key("pagination.page")
	AttrPageSize     = attribute.Key("pagination.page_size")
	AttrResultCount  = attribute.Key("result.count")
	AttrDBSystem     = attribute.Key("db.system")
)

// startSpan starts a new span for database operations.
// If the tracer is nil, it returns a no-op span from the context.
func (s *dbService) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	opts = append([]trace.SpanStartOption{
		trace.WithAttributes(AttrDBSystem.String(s.backend)),
	}, opts...)
	return s.tracer.Start(ctx, name, opts...)
}

// recordError records an error on a span and sets the span status to error.
// The status description is intentionally generic so SQL text never lands
// in trace status; full details remain available via span events.
func recordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
